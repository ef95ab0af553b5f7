package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/intent"
	"alcyxob/coach-assistant/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTSecret = "test-secret"

// stubAssistantService returns canned results and records calls.
type stubAssistantService struct {
	output     *service.TurnOutput
	err        error
	gotUserID  primitive.ObjectID
	gotMessage string
}

func (s *stubAssistantService) HandleTurn(_ context.Context, userID primitive.ObjectID, message string) (*service.TurnOutput, error) {
	s.gotUserID = userID
	s.gotMessage = message
	if s.err != nil {
		return nil, s.err
	}
	return s.output, nil
}

func (s *stubAssistantService) GetActiveDiet(context.Context, primitive.ObjectID) (*domain.DietDocument, error) {
	return nil, service.ErrPlanNotFound
}

func (s *stubAssistantService) GetActiveWorkout(context.Context, primitive.ObjectID) (*domain.WorkoutDocument, error) {
	return nil, service.ErrPlanNotFound
}

func (s *stubAssistantService) GetMealPlanRange(context.Context, primitive.ObjectID, string, string) ([]domain.MealPlanDay, error) {
	return nil, nil
}

func (s *stubAssistantService) GetFoodCategories(context.Context, primitive.ObjectID) ([]domain.FoodCategoryRow, error) {
	return nil, service.ErrPlanNotFound
}

type stubContentService struct{}

func (stubContentService) GenerateUploadURL(context.Context, primitive.ObjectID, string, string) (string, string, error) {
	return "", "", service.ErrContentInvalid
}

func (stubContentService) IngestContent(context.Context, primitive.ObjectID, service.IngestContentInput) (*domain.TrainerContentItem, error) {
	return nil, service.ErrContentInvalid
}

func (stubContentService) ListContent(context.Context, primitive.ObjectID) ([]domain.TrainerContentItem, error) {
	return nil, nil
}

func (stubContentService) DeleteContent(context.Context, primitive.ObjectID, string) error {
	return service.ErrContentNotFound
}

func (stubContentService) GetDownloadURL(context.Context, primitive.ObjectID, string) (string, error) {
	return "", service.ErrContentNotFound
}

func newTestRouter(assistant service.AssistantService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, testJWTSecret, assistant, stubContentService{})
	return router
}

func signToken(t *testing.T, userID primitive.ObjectID, role domain.Role) string {
	t.Helper()
	claims := jwtClaims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func doChatTurn(t *testing.T, router *gin.Engine, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/turn", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatTurnSuccess(t *testing.T) {
	stub := &stubAssistantService{output: &service.TurnOutput{
		Reply:       "Aquí tienes tu plan.  ¡A comer!",
		RequestType: intent.TypeMealPlanRequest,
	}}
	router := newTestRouter(stub)
	userID := primitive.NewObjectID()

	w := doChatTurn(t, router, signToken(t, userID, domain.RoleClient), `{"message":"Planifica mis comidas"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, stub.gotUserID)
	assert.Equal(t, "Planifica mis comidas", stub.gotMessage)

	var resp service.TurnOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Aquí tienes tu plan.  ¡A comer!", resp.Reply)
}

func TestChatTurnRequiresAuth(t *testing.T) {
	router := newTestRouter(&stubAssistantService{})

	w := doChatTurn(t, router, "", `{"message":"hola"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChatTurnRejectsTrainers(t *testing.T) {
	router := newTestRouter(&stubAssistantService{})

	w := doChatTurn(t, router, signToken(t, primitive.NewObjectID(), domain.RoleTrainer), `{"message":"hola"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestChatTurnRejectsEmptyMessage(t *testing.T) {
	router := newTestRouter(&stubAssistantService{})

	w := doChatTurn(t, router, signToken(t, primitive.NewObjectID(), domain.RoleClient), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatTurnMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"backend down", service.ErrBackendFailed, http.StatusBadGateway},
		{"no trainer", service.ErrNoTrainerAssigned, http.StatusConflict},
		{"unknown user", service.ErrUserNotFound, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubAssistantService{err: tc.err})
			w := doChatTurn(t, router, signToken(t, primitive.NewObjectID(), domain.RoleClient), `{"message":"hola"}`)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	router := newTestRouter(&stubAssistantService{})
	claims := jwtClaims{
		UserID: primitive.NewObjectID().Hex(),
		Role:   domain.RoleClient,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	w := doChatTurn(t, router, token, `{"message":"hola"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
