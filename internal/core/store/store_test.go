package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StoreTestSuite 使用記憶體 SQLite 的資料存取測試
type StoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store *Store
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(s.T(), err)
	require.NoError(s.T(), Migrate(db))

	s.db = db
	s.store = New(db)
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func fakePerson() *PersonModel {
	tdee := gofakeit.Number(1500, 3200)
	return &PersonModel{
		Name:     gofakeit.FirstName(),
		Sex:      gofakeit.RandomString([]string{"masculino", "femenino"}),
		Age:      gofakeit.Number(18, 70),
		Weight:   gofakeit.Float64Range(50, 110),
		Height:   gofakeit.Float64Range(150, 195),
		Activity: 1.55,
		Goal:     "mantener",
		TDEE:     &tdee,
	}
}

func (s *StoreTestSuite) TestPersonLifecycle() {
	s.Run("CreateGetUpdate", func() {
		// Arrange
		p := fakePerson()

		// Act
		require.NoError(s.T(), s.store.People.Create(s.ctx, p))
		got, err := s.store.People.Get(s.ctx, p.ID)

		// Assert
		require.NoError(s.T(), err)
		assert.Equal(s.T(), p.Name, got.Name)
		require.NotNil(s.T(), got.TDEE)
		assert.Equal(s.T(), *p.TDEE, *got.TDEE)
		assert.Empty(s.T(), got.Allowed)

		got.Goal = "ganar_musculo"
		got.Age = 40
		require.NoError(s.T(), s.store.People.Update(s.ctx, got))

		updated, err := s.store.People.Get(s.ctx, p.ID)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "ganar_musculo", updated.Goal)
		assert.Equal(s.T(), 40, updated.Age)
	})

	s.Run("MissingPerson_ShouldReturnNotFound", func() {
		_, err := s.store.People.Get(s.ctx, 9999)
		assert.ErrorIs(s.T(), err, common.ErrPersonNotFound)

		err = s.store.People.Update(s.ctx, &PersonModel{ID: 9999, Name: "x"})
		assert.ErrorIs(s.T(), err, common.ErrPersonNotFound)

		assert.ErrorIs(s.T(), s.store.People.Delete(s.ctx, 9999), common.ErrPersonNotFound)
		assert.ErrorIs(s.T(), s.store.People.SetIngredients(s.ctx, 9999, nil, nil), common.ErrPersonNotFound)
	})

	s.Run("SetIngredients", func() {
		p := fakePerson()
		require.NoError(s.T(), s.store.People.Create(s.ctx, p))

		require.NoError(s.T(), s.store.People.SetIngredients(s.ctx, p.ID, []string{"Pollo", "Arroz"}, []string{"Queso"}))

		got, err := s.store.People.Get(s.ctx, p.ID)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), StringSlice{"Pollo", "Arroz"}, got.Allowed)
		assert.Equal(s.T(), StringSlice{"Queso"}, got.Excluded)
	})

	s.Run("ListIsOrderedByID", func() {
		people, err := s.store.People.List(s.ctx)
		require.NoError(s.T(), err)
		require.GreaterOrEqual(s.T(), len(people), 2)
		for i := 1; i < len(people); i++ {
			assert.Less(s.T(), people[i-1].ID, people[i].ID)
		}
	})
}

func (s *StoreTestSuite) TestMenus() {
	p := fakePerson()
	require.NoError(s.T(), s.store.People.Create(s.ctx, p))

	s.Run("LatestWithoutMenus_ShouldReturnNotFound", func() {
		_, err := s.store.Menus.Latest(s.ctx, p.ID, "")
		assert.ErrorIs(s.T(), err, common.ErrMenuNotFound)
	})

	s.Run("LatestReturnsNewestOfKind", func() {
		older := &MenuModel{PersonID: p.ID, Kind: MenuKindRecipe, MealsCount: 3, Data: RawJSON(`[1]`), CreatedAt: time.Now().Add(-time.Hour)}
		newer := &MenuModel{PersonID: p.ID, Kind: MenuKindRecipe, MealsCount: 5, Data: RawJSON(`[2]`), CreatedAt: time.Now()}
		gramaje := &MenuModel{PersonID: p.ID, Kind: MenuKindGramaje, MealsCount: 3, Data: RawJSON(`[3]`), CreatedAt: time.Now().Add(time.Minute)}
		for _, m := range []*MenuModel{older, newer, gramaje} {
			require.NoError(s.T(), s.store.Menus.Save(s.ctx, m))
			assert.NotEmpty(s.T(), m.ID)
		}

		latest, err := s.store.Menus.Latest(s.ctx, p.ID, MenuKindRecipe)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), newer.ID, latest.ID)
		assert.JSONEq(s.T(), `[2]`, string(latest.Data))

		newest, err := s.store.Menus.Latest(s.ctx, p.ID, "")
		require.NoError(s.T(), err)
		assert.Equal(s.T(), gramaje.ID, newest.ID)

		require.NoError(s.T(), s.store.Menus.UpdateData(s.ctx, newer.ID, RawJSON(`[4]`)))
		latest, err = s.store.Menus.Latest(s.ctx, p.ID, MenuKindRecipe)
		require.NoError(s.T(), err)
		assert.JSONEq(s.T(), `[4]`, string(latest.Data))
	})

	s.Run("DeletePersonRemovesMenus", func() {
		require.NoError(s.T(), s.store.People.Delete(s.ctx, p.ID))

		n, err := s.store.Menus.Count(s.ctx, p.ID)
		require.NoError(s.T(), err)
		assert.Zero(s.T(), n)
	})
}

func (s *StoreTestSuite) TestTransactionRollsBack() {
	p := fakePerson()

	err := s.store.Transaction(s.ctx, func(tx *Store) error {
		require.NoError(s.T(), tx.People.Create(s.ctx, p))
		return fmt.Errorf("abort")
	})
	require.Error(s.T(), err)

	people, err := s.store.People.List(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), people)
	assert.NoError(s.T(), s.store.Ping(s.ctx))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
