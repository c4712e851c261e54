package fooddata

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"meal-planner/internal/core/cache"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Product Open Food Facts 產品（每 100 克）
type Product struct {
	Code    string  `json:"codigo"`
	Name    string  `json:"nombre"`
	Protein float64 `json:"proteina"`
	Carbs   float64 `json:"carbohidrato"`
	Fat     float64 `json:"grasa"`
	Kcal    float64 `json:"kcal"`
}

// Ingredient 轉為目錄格式
func (p Product) Ingredient() nutrition.Ingredient {
	return nutrition.Ingredient{
		Name:    p.Name,
		Protein: p.Protein,
		Carbs:   p.Carbs,
		Fat:     p.Fat,
		Kcal:    p.Kcal,
	}
}

// offProduct 搜尋結果中的單一產品
type offProduct struct {
	Code          string                 `json:"code"`
	ProductName   string                 `json:"product_name"`
	ProductNameEs string                 `json:"product_name_es"`
	GenericName   string                 `json:"generic_name"`
	Nutriments    map[string]interface{} `json:"nutriments"`
}

type searchResponse struct {
	Count    int          `json:"count"`
	Products []offProduct `json:"products"`
}

// Client Open Food Facts 查詢服務
type Client struct {
	config config.FoodDataConfig
	client *resty.Client
	cache  cache.Store
}

// NewClient 創建查詢服務，store 可為 nil
func NewClient(cfg config.FoodDataConfig, store cache.Store) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "meal-planner/1.0")

	return &Client{
		config: cfg,
		client: client,
		cache:  store,
	}
}

// Lookup 依名稱搜尋產品的營養成分
func (c *Client) Lookup(ctx context.Context, query string) ([]Product, error) {
	if !c.config.Enabled {
		return nil, common.ErrServiceUnavailable
	}
	query = strings.Join(strings.Fields(strings.ToLower(query)), " ")
	if query == "" {
		return nil, common.NewValidationError("q es obligatorio")
	}

	var cached []Product
	if err := cache.GetJSON(ctx, c.cache, cache.NamespaceFoodLookup, query, &cached); err == nil {
		return cached, nil
	}

	pageSize := c.config.PageSize
	if pageSize <= 0 {
		pageSize = 5
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search_terms":  query,
			"search_simple": "1",
			"action":        "process",
			"json":          "1",
			"page_size":     strconv.Itoa(pageSize),
			"fields":        "code,product_name,product_name_es,generic_name,nutriments",
		}).
		Get("/cgi-bin/search.pl")
	if err != nil {
		common.LogError("Open Food Facts 請求失敗", zap.String("q", query), zap.Error(err))
		return nil, common.ErrFoodDataError.Wrap(fmt.Errorf("failed to send request to Open Food Facts: %w", err))
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, common.ErrFoodDataError.Wrap(fmt.Errorf("Open Food Facts returned %d: %s", resp.StatusCode(), resp.String()))
	}

	var result searchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, common.ErrFoodDataError.Wrap(fmt.Errorf("failed to parse Open Food Facts response: %w", err))
	}

	products := make([]Product, 0, len(result.Products))
	for _, p := range result.Products {
		if prod, ok := p.toProduct(); ok {
			products = append(products, prod)
		}
	}

	if err := cache.SetJSON(ctx, c.cache, cache.NamespaceFoodLookup, query, products); err != nil {
		common.LogWarn("寫入查詢快取失敗", zap.Error(err))
	}

	common.LogDebug("Open Food Facts 查詢完成", zap.String("q", query), zap.Int("count", len(products)))
	return products, nil
}

// toProduct 沒有名稱或熱量的產品略過
func (p offProduct) toProduct() (Product, bool) {
	name := p.ProductNameEs
	if name == "" {
		name = p.ProductName
	}
	if name == "" {
		name = p.GenericName
	}
	if name == "" {
		return Product{}, false
	}

	kcal, ok := nutriment(p.Nutriments, "energy-kcal_100g", 0, 10000)
	if !ok {
		kj, okKJ := nutriment(p.Nutriments, "energy-kj_100g", 0, 41840)
		if !okKJ {
			return Product{}, false
		}
		kcal = kj / 4.184
	}

	protein, _ := nutriment(p.Nutriments, "proteins_100g", 0, 100)
	carbs, _ := nutriment(p.Nutriments, "carbohydrates_100g", 0, 100)
	fat, _ := nutriment(p.Nutriments, "fat_100g", 0, 100)

	return Product{
		Code:    p.Code,
		Name:    strings.TrimSpace(name),
		Protein: round1(protein),
		Carbs:   round1(carbs),
		Fat:     round1(fat),
		Kcal:    math.Round(kcal),
	}, true
}

// nutriment 讀取數值（可能是數字或字串），超出範圍視為不存在
func nutriment(m map[string]interface{}, key string, min, max float64) (float64, bool) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, false
	}

	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}

	if math.IsNaN(v) || v < min || v > max {
		return 0, false
	}
	return v, true
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
