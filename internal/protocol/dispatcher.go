// internal/protocol/dispatcher.go
package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dispatcher applies the persistent side effects of extracted ACTION blocks.
//
// Error policy: persistence failures are logged and swallowed so the
// user-visible reply is never blocked by a storage problem, and a failure on
// one block never aborts its siblings. The single-active deactivate/insert
// sequence is not atomic; callers are expected to serialize turns per
// (user, trainer), which the chat layer does today. The partial unique index
// on the diet and workout collections turns a lost race into a duplicate-key
// error rather than a double-active document.
type Dispatcher struct {
	diets          repository.DietRepository
	workouts       repository.WorkoutRepository
	mealPlans      repository.MealPlanRepository
	foodCategories repository.FoodCategoryRepository
}

// NewDispatcher creates a Dispatcher over the given repositories.
func NewDispatcher(
	diets repository.DietRepository,
	workouts repository.WorkoutRepository,
	mealPlans repository.MealPlanRepository,
	foodCategories repository.FoodCategoryRepository,
) *Dispatcher {
	return &Dispatcher{
		diets:          diets,
		workouts:       workouts,
		mealPlans:      mealPlans,
		foodCategories: foodCategories,
	}
}

// Dispatch persists the effect of every action in the result. rawText is the
// un-stripped model reply, used only for the day-count diagnostic. Dispatch
// never fails; it reports per-action problems through the log.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, trainerID primitive.ObjectID, result ParseResult, rawText string) {
	mealPlanDays := 0
	for _, action := range result.Actions {
		switch action.Type {
		case ActionOpenDiet:
			d.dispatchDiet(ctx, userID, trainerID, action.Data)
		case ActionOpenWorkout:
			d.dispatchWorkout(ctx, userID, trainerID, action.Data)
		case ActionOpenMealPlanner:
			mealPlanDays += d.dispatchMealPlan(ctx, userID, trainerID, action.Data)
		case ActionOpenGraph, ActionOpenProgressPhotos, ActionOpenWeightGraph:
			// Pure presentation signals, nothing to persist.
		default:
			log.Printf("WARN: Ignoring action with unknown type %q", action.Type)
		}
	}

	if mealPlanDays > 0 {
		if mismatch := CheckDayCountConsistency(rawText, mealPlanDays); mismatch != nil {
			// Diagnostic only. Intentionally not a retry trigger: see the
			// day-count note in DESIGN.md.
			log.Printf("WARN: Meal plan day-count mismatch for user %s: %s", userID.Hex(), mismatch)
		}
	}
}

func (d *Dispatcher) dispatchDiet(ctx context.Context, userID, trainerID primitive.ObjectID, data json.RawMessage) {
	var payload DietPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("ERROR: Discarding OPEN_DIET action with bad payload: %v", err)
		return
	}
	if payload.Title == "" {
		log.Printf("WARN: Discarding OPEN_DIET action without title")
		return
	}

	current, err := d.diets.GetActive(ctx, userID, trainerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("ERROR: Failed to load active diet for user %s: %v", userID.Hex(), err)
		return
	}
	if current != nil && current.Title == payload.Title {
		// The model re-emitted the diet it already created; nothing to do.
		return
	}

	if current != nil {
		if err := d.diets.DeactivateActive(ctx, userID, trainerID); err != nil {
			log.Printf("ERROR: Failed to deactivate diet for user %s: %v", userID.Hex(), err)
			return
		}
	}

	doc := payload.ToDocument()
	doc.UserID = userID
	doc.TrainerID = trainerID
	doc.IsActive = true
	dietID, err := d.diets.Insert(ctx, doc)
	if err != nil {
		log.Printf("ERROR: Failed to insert diet %q for user %s: %v", payload.Title, userID.Hex(), err)
		return
	}

	// Category fan-out is a best-effort secondary write: a failure here must
	// not fail the diet itself.
	rows := fanOutCategories(dietID, userID, trainerID, doc)
	if len(rows) > 0 {
		if err := d.foodCategories.ReplaceForDiet(ctx, dietID, rows); err != nil {
			log.Printf("WARN: Food category fan-out failed for diet %s: %v", dietID.Hex(), err)
		}
	}
}

func fanOutCategories(dietID, userID, trainerID primitive.ObjectID, doc *domain.DietDocument) []domain.FoodCategoryRow {
	now := time.Now().UTC()
	var rows []domain.FoodCategoryRow
	appendKind := func(kind domain.FoodCategoryKind, categories domain.CategoryMap) {
		for category, entries := range categories {
			for _, entry := range entries {
				rows = append(rows, domain.FoodCategoryRow{
					DietID:    dietID,
					UserID:    userID,
					TrainerID: trainerID,
					Kind:      kind,
					Category:  category,
					Entry:     entry,
					CreatedAt: now,
				})
			}
		}
	}
	appendKind(domain.FoodCategoryAllowed, doc.AllowedFoods)
	appendKind(domain.FoodCategoryControlled, doc.ControlledFoods)
	appendKind(domain.FoodCategoryProhibited, doc.ProhibitedFoods)
	return rows
}

func (d *Dispatcher) dispatchWorkout(ctx context.Context, userID, trainerID primitive.ObjectID, data json.RawMessage) {
	var payload WorkoutPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("ERROR: Discarding OPEN_WORKOUT action with bad payload: %v", err)
		return
	}
	if payload.Title == "" {
		log.Printf("WARN: Discarding OPEN_WORKOUT action without title")
		return
	}

	doc := payload.ToDocument()

	current, err := d.workouts.GetActive(ctx, userID, trainerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("ERROR: Failed to load active workout for user %s: %v", userID.Hex(), err)
		return
	}
	if current != nil {
		// An active workout is revised in place rather than replaced.
		if err := d.workouts.UpdateContent(ctx, current.ID, doc.Title, doc.Description, doc.Days); err != nil {
			log.Printf("ERROR: Failed to update workout %s: %v", current.ID.Hex(), err)
		}
		return
	}

	if err := d.workouts.DeactivateActive(ctx, userID, trainerID); err != nil {
		log.Printf("ERROR: Failed to deactivate workout for user %s: %v", userID.Hex(), err)
		return
	}
	doc.UserID = userID
	doc.TrainerID = trainerID
	doc.IsActive = true
	if _, err := d.workouts.Insert(ctx, doc); err != nil {
		log.Printf("ERROR: Failed to insert workout %q for user %s: %v", payload.Title, userID.Hex(), err)
	}
}

// dispatchMealPlan returns the number of days it attempted to persist, which
// feeds the day-count diagnostic.
func (d *Dispatcher) dispatchMealPlan(ctx context.Context, userID, trainerID primitive.ObjectID, data json.RawMessage) int {
	var payload MealPlannerPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("ERROR: Discarding OPEN_MEAL_PLANNER action with bad payload: %v", err)
		return 0
	}
	expanded, err := ExpandMealPlanDates(payload)
	if err != nil {
		log.Printf("ERROR: Discarding OPEN_MEAL_PLANNER action: %v", err)
		return 0
	}

	// Per-date upserts are independent; they are performed sequentially as a
	// simplicity choice, not a correctness requirement.
	for _, dm := range expanded {
		day := &domain.MealPlanDay{
			UserID:    userID,
			TrainerID: trainerID,
			Date:      dm.Date,
			Meals:     dm.Meals,
		}
		if err := d.mealPlans.Upsert(ctx, day); err != nil {
			log.Printf("ERROR: Failed to upsert meal plan %s for user %s: %v", dm.Date, userID.Hex(), err)
		}
	}
	return len(expanded)
}
