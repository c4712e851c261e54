package nutrition

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultRecipeTrials 食譜組合的隨機嘗試次數
const DefaultRecipeTrials = 1000

// Composer 菜單組合器，兩種組合方式共用同一個亂數來源
type Composer struct {
	catalog *Catalog
	trials  int

	mu  sync.Mutex
	rng *rand.Rand
}

// Option 組合器選項
type Option func(*Composer)

// WithCatalog 使用指定目錄
func WithCatalog(c *Catalog) Option {
	return func(comp *Composer) {
		if c != nil {
			comp.catalog = c
		}
	}
}

// WithSeed 固定亂數種子（測試用）
func WithSeed(seed int64) Option {
	return func(comp *Composer) {
		comp.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand 使用外部亂數來源
func WithRand(r *rand.Rand) Option {
	return func(comp *Composer) {
		if r != nil {
			comp.rng = r
		}
	}
}

// WithTrials 設定嘗試次數
func WithTrials(n int) Option {
	return func(comp *Composer) {
		if n > 0 {
			comp.trials = n
		}
	}
}

// NewComposer 創建組合器，預設使用內建目錄與時間種子
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		catalog: DefaultCatalog(),
		trials:  DefaultRecipeTrials,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog 目前使用的目錄
func (c *Composer) Catalog() *Catalog {
	return c.catalog
}

// Trials 每次組合的嘗試次數
func (c *Composer) Trials() int {
	return c.trials
}

// intn 呼叫端必須持有 c.mu
func (c *Composer) intn(n int) int {
	return c.rng.Intn(n)
}

// pickDistinct 從 0..n-1 取 k 個不重複索引（部分 Fisher-Yates），呼叫端必須持有 c.mu
func (c *Composer) pickDistinct(n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + c.intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// drawIngredients 從 bucket 隨機取最多 n 個不重複食材，呼叫端必須持有 c.mu
func (c *Composer) drawIngredients(bucket []Ingredient, n int) []Ingredient {
	if n > len(bucket) {
		n = len(bucket)
	}
	out := make([]Ingredient, 0, n)
	for _, i := range c.pickDistinct(len(bucket), n) {
		out = append(out, bucket[i])
	}
	return out
}
