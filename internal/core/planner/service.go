package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meal-planner/internal/core/cache"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/store"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Observer 接收菜單組合結果（例如指標收集）
type Observer interface {
	MenuComposed(kind string, meals int, duration time.Duration)
}

// Service 使用者、菜單與組合流程
type Service struct {
	store    *store.Store
	composer *nutrition.Composer
	cache    cache.Store
	queue    *queue.Manager
	observer Observer
}

// NewService 創建服務；cache、queue 與 observer 可為 nil
func NewService(st *store.Store, composer *nutrition.Composer, c cache.Store, q *queue.Manager, obs Observer) *Service {
	if composer == nil {
		composer = nutrition.NewComposer()
	}
	return &Service{
		store:    st,
		composer: composer,
		cache:    c,
		queue:    q,
		observer: obs,
	}
}

// Catalog 食材與食譜目錄
func (s *Service) Catalog() *nutrition.Catalog {
	return s.composer.Catalog()
}

// EstimateEnergy 計算每日總消耗熱量
func (s *Service) EstimateEnergy(in nutrition.EnergyInput) int {
	return nutrition.EstimateEnergy(in)
}

// ListPeople 所有使用者
func (s *Service) ListPeople(ctx context.Context) ([]common.PersonConfig, error) {
	rows, err := s.store.People.List(ctx)
	if err != nil {
		return nil, err
	}
	people := make([]common.PersonConfig, 0, len(rows))
	for _, row := range rows {
		people = append(people, toPersonConfig(row))
	}
	return people, nil
}

// SyncPeople 以傳入清單為準：刪除不在清單中的使用者，更新有變動的，建立新的
func (s *Service) SyncPeople(ctx context.Context, incoming []common.PersonConfig) ([]common.PersonConfig, error) {
	var touched []uint

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		existing, err := tx.People.List(ctx)
		if err != nil {
			return err
		}

		byID := make(map[uint]store.PersonModel, len(existing))
		for _, row := range existing {
			byID[row.ID] = row
		}
		keep := make(map[uint]bool, len(incoming))
		for _, p := range incoming {
			if p.ID != nil {
				keep[*p.ID] = true
			}
		}

		for _, row := range existing {
			if keep[row.ID] {
				continue
			}
			if err := tx.People.Delete(ctx, row.ID); err != nil {
				return err
			}
			touched = append(touched, row.ID)
		}

		for _, p := range incoming {
			if p.ID != nil {
				if current, ok := byID[*p.ID]; ok {
					updated, changed := mergePerson(current, p)
					if !changed {
						continue
					}
					if err := tx.People.Update(ctx, &updated); err != nil {
						return err
					}
					touched = append(touched, updated.ID)
					continue
				}
			}

			row := newPerson(p)
			if err := tx.People.Create(ctx, &row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range touched {
		s.invalidateLatest(ctx, id)
	}
	common.LogInfo("使用者設定已同步", zap.Int("count", len(incoming)), zap.Int("touched", len(touched)))
	return s.ListPeople(ctx)
}

// mergePerson 套用變更；TDEE 在身體資料或目標改變時重新計算
func mergePerson(current store.PersonModel, p common.PersonConfig) (store.PersonModel, bool) {
	recompute := biometricsChanged(current, p) || current.TDEE == nil
	changed := recompute || current.Name != p.Nombre

	updated := current
	updated.Name = p.Nombre
	updated.Sex = p.Sexo
	updated.Age = p.Edad
	updated.Weight = p.Peso
	updated.Height = p.Estatura
	updated.Activity = p.Actividad
	updated.Goal = p.Objetivo

	switch {
	case recompute:
		tdee := nutrition.EstimateEnergy(energyInput(p))
		updated.TDEE = &tdee
	case p.TDEE != nil && *p.TDEE > 0 && *p.TDEE != *current.TDEE:
		tdee := *p.TDEE
		updated.TDEE = &tdee
		changed = true
	}
	return updated, changed
}

func newPerson(p common.PersonConfig) store.PersonModel {
	tdee := nutrition.EstimateEnergy(energyInput(p))
	sel := common.IngredientSelection{Permitidos: p.Ingredientes, Excluidos: p.Excluidos}.Normalize()
	return store.PersonModel{
		Name:     p.Nombre,
		Sex:      p.Sexo,
		Age:      p.Edad,
		Weight:   p.Peso,
		Height:   p.Estatura,
		Activity: p.Actividad,
		Goal:     p.Objetivo,
		TDEE:     &tdee,
		Allowed:  store.StringSlice(sel.Permitidos),
		Excluded: store.StringSlice(sel.Excluidos),
	}
}

// DeletePerson 刪除使用者及其菜單
func (s *Service) DeletePerson(ctx context.Context, id uint) error {
	if err := s.store.People.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateLatest(ctx, id)
	common.LogInfo("使用者已刪除", zap.Uint("person_id", id))
	return nil
}

// GetIngredients 使用者的允許與排除清單
func (s *Service) GetIngredients(ctx context.Context, id uint) (common.IngredientSelection, error) {
	p, err := s.store.People.Get(ctx, id)
	if err != nil {
		return common.IngredientSelection{}, err
	}
	return common.IngredientSelection{
		Permitidos: append([]string{}, p.Allowed...),
		Excluidos:  append([]string{}, p.Excluded...),
	}, nil
}

// SetIngredients 取代使用者的食材清單；同時出現在兩邊者以排除為準
func (s *Service) SetIngredients(ctx context.Context, id uint, sel common.IngredientSelection) (common.IngredientSelection, error) {
	sel = sel.Normalize()
	if unknown := s.Catalog().UnknownIngredients(append(append([]string{}, sel.Permitidos...), sel.Excluidos...)); len(unknown) > 0 {
		common.LogDebug("食材不在目錄中", zap.Uint("person_id", id), zap.Strings("unknown", unknown))
	}
	if err := s.store.People.SetIngredients(ctx, id, sel.Permitidos, sel.Excluidos); err != nil {
		return common.IngredientSelection{}, err
	}
	return sel, nil
}

// GenerateMenu 產生食譜菜單。完整菜單會存為使用者最新的菜單；
// OnlySlot 只重新產生該餐，並更新最新儲存的菜單。
func (s *Service) GenerateMenu(ctx context.Context, req MenuRequest) (*RecipeMenu, error) {
	if !nutrition.ValidMealsCount(req.MealsCount) {
		return nil, common.ErrInvalidMealsCount
	}

	var person *store.PersonModel
	if req.PersonID != nil {
		p, err := s.store.People.Get(ctx, *req.PersonID)
		if err != nil {
			return nil, err
		}
		person = p
		if req.TDEE <= 0 && p.TDEE != nil {
			req.TDEE = *p.TDEE
		}
		if req.Allowed == nil {
			req.Allowed = p.Allowed
		}
		if req.Excluded == nil {
			req.Excluded = p.Excluded
		}
		if req.Goal == "" {
			req.Goal = p.Goal
		}
	}
	if req.TDEE <= 0 {
		return nil, common.NewValidationError("tdee es obligatorio")
	}
	if req.OnlySlot != nil && *req.OnlySlot >= req.MealsCount {
		return nil, common.NewValidationError(fmt.Sprintf("soloComida debe estar entre 0 y %d", req.MealsCount-1))
	}

	in := nutrition.MenuInput{
		TDEE:       req.TDEE,
		Allowed:    req.Allowed,
		Excluded:   req.Excluded,
		MealsCount: req.MealsCount,
		Goal:       req.Goal,
	}

	if req.OnlySlot != nil && person != nil {
		menu, replaced, err := s.replaceSlot(ctx, person.ID, in, *req.OnlySlot)
		if err != nil || replaced {
			return menu, err
		}
	}

	meals := s.composeRecipes(ctx, in)
	if len(meals) == 0 {
		return nil, common.ErrInsufficientPool
	}

	// 沒有可取代的已存菜單：只回傳該餐，不儲存
	if req.OnlySlot != nil {
		meal := meals[*req.OnlySlot]
		return &RecipeMenu{
			Meals:   []nutrition.RecipeMeal{meal},
			Summary: nutrition.SummarizeRecipes([]nutrition.RecipeMeal{meal}, req.TDEE, req.Goal),
		}, nil
	}

	menu := &RecipeMenu{
		Meals:   meals,
		Summary: nutrition.SummarizeRecipes(meals, req.TDEE, req.Goal),
	}
	if person != nil {
		id, err := s.saveMenu(ctx, person.ID, store.MenuKindRecipe, req.MealsCount, req.TDEE, req.Goal, meals)
		if err != nil {
			return nil, err
		}
		menu.ID = id
	}
	return menu, nil
}

// replaceSlot 重新產生最新已存菜單中的一餐並寫回。新食譜不會與同一天其他餐重複，
// 有其他候選時也不會沿用原本的食譜。沒有餐數相同的已存菜單時 replaced 為 false。
func (s *Service) replaceSlot(ctx context.Context, personID uint, in nutrition.MenuInput, slot int) (*RecipeMenu, bool, error) {
	latest, err := s.store.Menus.Latest(ctx, personID, store.MenuKindRecipe)
	if errors.Is(err, common.ErrMenuNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var meals []nutrition.RecipeMeal
	if err := common.ParseJSONBytes(latest.Data, &meals); err != nil {
		return nil, false, fmt.Errorf("failed to decode menu %s: %w", latest.ID, err)
	}
	if len(meals) != in.MealsCount {
		return nil, false, nil
	}

	in.TDEE = latest.TDEE
	in.Goal = latest.Goal

	start := time.Now()
	fresh := in
	fresh.Blocked = append(append([]string{}, in.Blocked...), meals[slot].Recipe)
	meal, ok := s.composer.ComposeSlot(fresh, meals, slot)
	if !ok {
		meal, ok = s.composer.ComposeSlot(in, meals, slot)
	}
	if !ok {
		s.observe(ctx, store.MenuKindRecipe, 0, time.Since(start))
		return nil, false, common.ErrInsufficientPool
	}
	s.observe(ctx, store.MenuKindRecipe, 1, time.Since(start))

	previous := meals[slot].Recipe
	meals[slot] = meal
	data, err := json.Marshal(meals)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode menu: %w", err)
	}
	if err := s.store.Menus.UpdateData(ctx, latest.ID, data); err != nil {
		return nil, false, err
	}
	s.invalidateLatest(ctx, personID)

	common.LogInfo("已重新產生單餐",
		zap.Uint("person_id", personID),
		zap.Int("slot", slot),
		zap.String("previous", previous),
		zap.String("recipe", meal.Recipe),
		zap.String("request_id", common.RequestIDFrom(ctx)),
	)
	return &RecipeMenu{
		ID:      latest.ID,
		Meals:   meals,
		Summary: nutrition.SummarizeRecipes(meals, latest.TDEE, latest.Goal),
	}, true, nil
}

// GenerateGramajeMenu 產生克數菜單；指定使用者時儲存
func (s *Service) GenerateGramajeMenu(ctx context.Context, req GramajeRequest) (*GramajeMenu, error) {
	if !nutrition.ValidMealsCount(req.MealsCount) {
		return nil, common.ErrInvalidMealsCount
	}

	var personID uint
	if req.PersonID != nil {
		p, err := s.store.People.Get(ctx, *req.PersonID)
		if err != nil {
			return nil, err
		}
		personID = p.ID
		if req.TDEE <= 0 && p.TDEE != nil {
			req.TDEE = *p.TDEE
		}
		if req.Allowed == nil {
			req.Allowed = p.Allowed
		}
		if req.Goal == "" {
			req.Goal = p.Goal
		}
	}
	if req.TDEE <= 0 {
		return nil, common.NewValidationError("tdee es obligatorio")
	}

	start := time.Now()
	meals := s.composer.ComposeIngredientMenu(nutrition.GramajeInput{
		TDEE:       req.TDEE,
		MealsCount: req.MealsCount,
		Allowed:    req.Allowed,
		Goal:       req.Goal,
	})
	s.observe(ctx, store.MenuKindGramaje, len(meals), time.Since(start))
	if len(meals) == 0 {
		return nil, common.ErrInsufficientPool
	}

	menu := &GramajeMenu{
		Meals:   meals,
		Summary: nutrition.SummarizeGramaje(meals, req.TDEE, req.Goal),
	}
	if personID != 0 {
		id, err := s.saveMenu(ctx, personID, store.MenuKindGramaje, req.MealsCount, req.TDEE, req.Goal, meals)
		if err != nil {
			return nil, err
		}
		menu.ID = id
	}
	return menu, nil
}

// LatestMenu 使用者最近的菜單；kind 為空時不限種類
func (s *Service) LatestMenu(ctx context.Context, personID uint, kind string) (*SavedMenu, error) {
	key := latestKey(personID, kind)

	var cached SavedMenu
	if err := cache.GetJSON(ctx, s.cache, cache.NamespaceLatestMenu, key, &cached); err == nil {
		return &cached, nil
	}

	if _, err := s.store.People.Get(ctx, personID); err != nil {
		return nil, err
	}
	row, err := s.store.Menus.Latest(ctx, personID, kind)
	if err != nil {
		return nil, err
	}

	saved := &SavedMenu{
		ID:         row.ID,
		PersonID:   row.PersonID,
		Kind:       row.Kind,
		MealsCount: row.MealsCount,
		TDEE:       row.TDEE,
		Goal:       row.Goal,
		CreatedAt:  row.CreatedAt,
	}
	switch row.Kind {
	case store.MenuKindGramaje:
		if err := common.ParseJSONBytes(row.Data, &saved.Gramaje); err != nil {
			return nil, fmt.Errorf("failed to decode menu %s: %w", row.ID, err)
		}
		saved.Summary = nutrition.SummarizeGramaje(saved.Gramaje, row.TDEE, row.Goal)
	default:
		if err := common.ParseJSONBytes(row.Data, &saved.Recipes); err != nil {
			return nil, fmt.Errorf("failed to decode menu %s: %w", row.ID, err)
		}
		saved.Summary = nutrition.SummarizeRecipes(saved.Recipes, row.TDEE, row.Goal)
	}

	if err := cache.SetJSON(ctx, s.cache, cache.NamespaceLatestMenu, key, saved); err != nil {
		common.LogWarn("寫入菜單快取失敗", zap.Uint("person_id", personID), zap.Error(err))
	}
	return saved, nil
}

// GenerateAll 為每位有 TDEE 的使用者產生食譜菜單，經由工作隊列執行
func (s *Service) GenerateAll(ctx context.Context, mealsCount int) ([]BatchResult, error) {
	if !nutrition.ValidMealsCount(mealsCount) {
		return nil, common.ErrInvalidMealsCount
	}

	people, err := s.store.People.List(ctx)
	if err != nil {
		return nil, err
	}

	var (
		results []BatchResult
		pending = make(map[int]<-chan queue.Result)
	)
	for _, p := range people {
		if p.TDEE == nil || *p.TDEE <= 0 {
			continue
		}
		id := p.ID
		idx := len(results)
		results = append(results, BatchResult{PersonID: p.ID, Name: p.Name})

		job := func(jobCtx context.Context) (interface{}, error) {
			return s.GenerateMenu(jobCtx, MenuRequest{PersonID: &id, MealsCount: mealsCount})
		}

		if s.queue != nil {
			ch, err := s.queue.Enqueue(ctx, job)
			if err == nil {
				pending[idx] = ch
				continue
			}
			if !errors.Is(err, queue.ErrQueueFull) {
				return nil, err
			}
			common.LogWarn("工作隊列已滿，直接執行", zap.Uint("person_id", id))
		}

		value, err := job(ctx)
		fillBatch(&results[idx], value, err)
	}

	for idx, ch := range pending {
		select {
		case res := <-ch:
			fillBatch(&results[idx], res.Value, res.Error)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	common.LogInfo("批次菜單產生完成", zap.Int("people", len(results)), zap.Int("meals", mealsCount))
	return results, nil
}

func fillBatch(r *BatchResult, value interface{}, err error) {
	switch {
	case errors.Is(err, common.ErrInsufficientPool):
		r.Insufficient = true
	case err != nil:
		r.Error = common.AsCustomError(err).Message
	default:
		if menu, ok := value.(*RecipeMenu); ok {
			r.Menu = menu
		}
	}
}

func (s *Service) composeRecipes(ctx context.Context, in nutrition.MenuInput) []nutrition.RecipeMeal {
	start := time.Now()
	meals := s.composer.ComposeMenu(in)
	s.observe(ctx, store.MenuKindRecipe, len(meals), time.Since(start))
	return meals
}

func (s *Service) observe(ctx context.Context, kind string, meals int, d time.Duration) {
	common.LogCompose(kind, meals, d, common.RequestIDFrom(ctx))
	if s.observer != nil {
		s.observer.MenuComposed(kind, meals, d)
	}
}

func (s *Service) saveMenu(ctx context.Context, personID uint, kind string, mealsCount, tdee int, goal string, meals interface{}) (string, error) {
	data, err := json.Marshal(meals)
	if err != nil {
		return "", fmt.Errorf("failed to encode menu: %w", err)
	}
	row := &store.MenuModel{
		PersonID:   personID,
		Kind:       kind,
		MealsCount: mealsCount,
		TDEE:       tdee,
		Goal:       goal,
		Data:       data,
	}
	if err := s.store.Menus.Save(ctx, row); err != nil {
		return "", err
	}
	s.invalidateLatest(ctx, personID)
	return row.ID, nil
}

func (s *Service) invalidateLatest(ctx context.Context, personID uint) {
	for _, kind := range []string{"", store.MenuKindRecipe, store.MenuKindGramaje} {
		if err := cache.Invalidate(ctx, s.cache, cache.NamespaceLatestMenu, latestKey(personID, kind)); err != nil {
			common.LogWarn("清除菜單快取失敗", zap.Uint("person_id", personID), zap.Error(err))
		}
	}
}

func latestKey(personID uint, kind string) string {
	return fmt.Sprintf("%d:%s", personID, kind)
}
