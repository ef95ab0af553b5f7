package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"alcyxob/coach-assistant/internal/config"
	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/intent"
	"alcyxob/coach-assistant/internal/llm"
	"alcyxob/coach-assistant/internal/protocol"
	"alcyxob/coach-assistant/internal/repository"
	"alcyxob/coach-assistant/internal/retrieval"
	"alcyxob/coach-assistant/internal/verifier"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserNotClient     = errors.New("user found but is not a client")
	ErrNoTrainerAssigned = errors.New("client has no trainer assigned")
	ErrBackendFailed     = errors.New("assistant backend request failed")
	ErrPlanNotFound      = errors.New("plan not found")
)

// TurnOutput is what one chat turn hands back to the client app. Actions have
// already been persisted; the client only uses them to open screens. Requests
// are proposals awaiting user confirmation.
type TurnOutput struct {
	Reply       string             `json:"reply"`
	Actions     []protocol.Action  `json:"actions"`
	Requests    []protocol.Request `json:"requests"`
	RequestType intent.RequestType `json:"requestType"`
	Model       string             `json:"model,omitempty"`

	// SafetyTriggered marks a turn answered by the fixed safety response,
	// without any model call.
	SafetyTriggered bool `json:"safetyTriggered,omitempty"`

	// Verification summarizes the diet completeness pass, nil for other turns.
	Verification *VerificationSummary `json:"verification,omitempty"`
}

// VerificationSummary is the client-visible slice of a verifier outcome.
type VerificationSummary struct {
	IsComplete   bool     `json:"isComplete"`
	Iterations   int      `json:"iterations"`
	MissingItems []string `json:"missingItems,omitempty"`
}

// --- Service Interface ---
type AssistantService interface {
	// HandleTurn runs one full chat turn for a client. Callers are expected
	// to serialize turns per user; concurrent turns for the same user may
	// interleave plan writes.
	HandleTurn(ctx context.Context, userID primitive.ObjectID, message string) (*TurnOutput, error)

	// Plan reads for the client app.
	GetActiveDiet(ctx context.Context, userID primitive.ObjectID) (*domain.DietDocument, error)
	GetActiveWorkout(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutDocument, error)
	GetMealPlanRange(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.MealPlanDay, error)
	GetFoodCategories(ctx context.Context, userID primitive.ObjectID) ([]domain.FoodCategoryRow, error)
}

// --- Service Implementation ---

type assistantService struct {
	userRepo       repository.UserRepository
	dietRepo       repository.DietRepository
	workoutRepo    repository.WorkoutRepository
	mealPlanRepo   repository.MealPlanRepository
	foodCatRepo    repository.FoodCategoryRepository
	usageLogRepo   repository.UsageLogRepository
	generator      llm.Generator
	classifier     intent.Classifier
	searcher       *retrieval.Searcher
	dispatcher     *protocol.Dispatcher
	dietVerifier   *verifier.Verifier
	cfg            config.OpenAIConfig
	retrievalLimit int
}

// NewAssistantService wires the chat turn pipeline.
func NewAssistantService(
	userRepo repository.UserRepository,
	dietRepo repository.DietRepository,
	workoutRepo repository.WorkoutRepository,
	mealPlanRepo repository.MealPlanRepository,
	foodCatRepo repository.FoodCategoryRepository,
	usageLogRepo repository.UsageLogRepository,
	generator llm.Generator,
	classifier intent.Classifier,
	searcher *retrieval.Searcher,
	dispatcher *protocol.Dispatcher,
	dietVerifier *verifier.Verifier,
	cfg config.OpenAIConfig,
	assistantCfg config.AssistantConfig,
) AssistantService {
	limit := assistantCfg.RetrievalLimit
	if limit <= 0 {
		limit = retrieval.DefaultLimit
	}
	return &assistantService{
		userRepo:       userRepo,
		dietRepo:       dietRepo,
		workoutRepo:    workoutRepo,
		mealPlanRepo:   mealPlanRepo,
		foodCatRepo:    foodCatRepo,
		usageLogRepo:   usageLogRepo,
		generator:      generator,
		classifier:     classifier,
		searcher:       searcher,
		dispatcher:     dispatcher,
		dietVerifier:   dietVerifier,
		cfg:            cfg,
		retrievalLimit: limit,
	}
}

// HandleTurn runs the full pipeline:
// safety gate -> classify -> gather context -> retrieve -> generate ->
// extract blocks -> dispatch -> (diet turns) verify -> log usage.
// Only a model backend failure is a hard error; every persistence problem is
// logged and the reply still goes out.
func (s *assistantService) HandleTurn(ctx context.Context, userID primitive.ObjectID, message string) (*TurnOutput, error) {
	user, trainerID, err := s.resolveClient(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Safety gate: never generate plans over medical or disordered-eating
	// signals. Fixed response, no model call.
	if issues := intent.DetectSafetyIssues(message); len(issues) > 0 {
		log.Printf("WARN: Safety issues %v detected for user %s", issues, userID.Hex())
		return &TurnOutput{
			Reply:           intent.SafetyResponse(issues),
			RequestType:     intent.TypeGeneralChat,
			SafetyTriggered: true,
		}, nil
	}

	classification := s.classifier.Classify(message)

	// Profile, active diet and active workout reads are independent.
	turnCtx := s.gatherContext(ctx, userID, trainerID)

	material, err := s.searcher.Search(ctx, trainerID, message, retrieval.Filters{
		ContentType: contentTypeFor(classification.RequestType),
		TargetGoal:  user.Goal,
		Limit:       s.retrievalLimit,
	})
	if err != nil {
		// A reply grounded only in the profile beats no reply.
		log.Printf("WARN: Content retrieval failed for trainer %s: %v", trainerID.Hex(), err)
		material = nil
	}

	model := s.cfg.Model
	if classification.UseExpensiveModel && s.cfg.ExpensiveModel != "" {
		model = s.cfg.ExpensiveModel
	}

	resp, err := s.generator.Complete(ctx, llm.Request{
		Model: model,
		Messages: []llm.Message{
			{Role: "system", Content: buildSystemPrompt(user, turnCtx, material, classification)},
			{Role: "user", Content: message},
		},
	})
	if err != nil {
		log.Printf("ERROR: Model backend failed for user %s: %v", userID.Hex(), err)
		return nil, fmt.Errorf("%w: %v", ErrBackendFailed, err)
	}

	raw := resp.Content
	result := protocol.Parse(raw)

	// A structured turn that produced no matching block usually means the
	// model answered with bare JSON instead of a tagged block. Recover it.
	if classification.ExpectedSchema != "" && !hasActionFor(result.Actions, classification.ExpectedSchema) {
		if action, ok := protocol.SniffAction(result.CleanText); ok {
			log.Printf("WARN: Recovered untagged %s payload for user %s", action.Type, userID.Hex())
			result.Actions = append(result.Actions, action)
		} else {
			log.Printf("WARN: Expected %s block missing from reply for user %s", classification.ExpectedSchema, userID.Hex())
		}
	}

	s.dispatcher.Dispatch(ctx, userID, trainerID, result, raw)

	reply := result.CleanText
	out := &TurnOutput{
		Actions:     result.Actions,
		Requests:    result.Requests,
		RequestType: classification.RequestType,
		Model:       resp.Model,
	}

	// Diet turns get a completeness pass over the raw reply. The completed
	// text is re-parsed so supplements cannot smuggle blocks past dispatch.
	if classification.RequestType == intent.TypeDietRequest {
		outcome := s.dietVerifier.VerifyAndComplete(ctx, raw, user.Goal, material)
		reply = protocol.Parse(outcome.FinalAnswer).CleanText
		out.Verification = &VerificationSummary{
			IsComplete:   outcome.IsComplete,
			Iterations:   outcome.Iterations,
			MissingItems: outcome.MissingItems,
		}
	}
	out.Reply = reply

	s.logUsage(ctx, userID, trainerID, message, classification.RequestType, material)

	return out, nil
}

// resolveClient loads the user and checks they are a client with a trainer.
func (s *assistantService) resolveClient(ctx context.Context, userID primitive.ObjectID) (*domain.User, primitive.ObjectID, error) {
	if userID == primitive.NilObjectID {
		return nil, primitive.NilObjectID, ErrUserNotFound
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, primitive.NilObjectID, ErrUserNotFound
		}
		return nil, primitive.NilObjectID, err
	}
	if !user.IsClient() {
		return nil, primitive.NilObjectID, ErrUserNotClient
	}
	if user.TrainerID == nil || *user.TrainerID == primitive.NilObjectID {
		return nil, primitive.NilObjectID, ErrNoTrainerAssigned
	}
	return user, *user.TrainerID, nil
}

// turnContext is the read-side state a prompt is built from.
type turnContext struct {
	activeDiet    *domain.DietDocument
	activeWorkout *domain.WorkoutDocument
}

// gatherContext fans out the independent plan reads. Read failures degrade
// the prompt, they never fail the turn.
func (s *assistantService) gatherContext(ctx context.Context, userID, trainerID primitive.ObjectID) turnContext {
	var tc turnContext
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		diet, err := s.dietRepo.GetActive(ctx, userID, trainerID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Printf("WARN: Failed to load active diet for user %s: %v", userID.Hex(), err)
			}
			return
		}
		tc.activeDiet = diet
	}()
	go func() {
		defer wg.Done()
		workout, err := s.workoutRepo.GetActive(ctx, userID, trainerID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Printf("WARN: Failed to load active workout for user %s: %v", userID.Hex(), err)
			}
			return
		}
		tc.activeWorkout = workout
	}()
	wg.Wait()

	return tc
}

// logUsage records which library items grounded this reply, best-effort.
func (s *assistantService) logUsage(ctx context.Context, userID, trainerID primitive.ObjectID, query string, responseType intent.RequestType, material []domain.TrainerContentItem) {
	for _, item := range material {
		entry := &domain.ContentUsageLog{
			TrainerID:    trainerID,
			UserID:       userID,
			ContentID:    item.ID,
			Query:        query,
			ResponseType: string(responseType),
		}
		if err := s.usageLogRepo.Insert(ctx, entry); err != nil {
			log.Printf("WARN: Failed to log content usage for item %s: %v", item.ID, err)
			return
		}
	}
}

// contentTypeFor maps a request type to the library slice worth retrieving.
func contentTypeFor(rt intent.RequestType) domain.ContentType {
	switch rt {
	case intent.TypeDietRequest, intent.TypeMealPlanRequest, intent.TypeFoodQuestion:
		return domain.ContentTypeDiet
	case intent.TypeWorkoutRequest, intent.TypeExerciseQuestion:
		return domain.ContentTypeWorkout
	default:
		return domain.ContentTypeAll
	}
}

// hasActionFor reports whether one of the extracted actions satisfies the
// schema the classifier expected for this turn.
func hasActionFor(actions []protocol.Action, schema string) bool {
	want := map[string]string{
		"diet":      protocol.ActionOpenDiet,
		"workout":   protocol.ActionOpenWorkout,
		"meal_plan": protocol.ActionOpenMealPlanner,
	}[schema]
	if want == "" {
		return true
	}
	for _, a := range actions {
		if a.Type == want {
			return true
		}
	}
	return false
}

// === Plan reads ===

func (s *assistantService) GetActiveDiet(ctx context.Context, userID primitive.ObjectID) (*domain.DietDocument, error) {
	_, trainerID, err := s.resolveClient(ctx, userID)
	if err != nil {
		return nil, err
	}
	diet, err := s.dietRepo.GetActive(ctx, userID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return diet, nil
}

func (s *assistantService) GetActiveWorkout(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutDocument, error) {
	_, trainerID, err := s.resolveClient(ctx, userID)
	if err != nil {
		return nil, err
	}
	workout, err := s.workoutRepo.GetActive(ctx, userID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return workout, nil
}

func (s *assistantService) GetMealPlanRange(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.MealPlanDay, error) {
	_, trainerID, err := s.resolveClient(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.mealPlanRepo.GetRange(ctx, userID, trainerID, from, to)
}

func (s *assistantService) GetFoodCategories(ctx context.Context, userID primitive.ObjectID) ([]domain.FoodCategoryRow, error) {
	_, trainerID, err := s.resolveClient(ctx, userID)
	if err != nil {
		return nil, err
	}
	diet, err := s.dietRepo.GetActive(ctx, userID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return s.foodCatRepo.GetByDiet(ctx, diet.ID)
}
