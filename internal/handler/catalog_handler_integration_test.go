package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type CatalogHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB      *testutil.TestDatabase
	router      *gin.Engine
	adminHeader string
}

func (s *CatalogHandlerIntegrationTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
}

func (s *CatalogHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *CatalogHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.router = newTestRouter(s.testDB.DB, &testutil.FakeMailer{})
	admin := testutil.CreateTestUser(s.T(), s.testDB.DB, "admin", models.RoleAdmin)
	s.adminHeader = testutil.AuthHeader(s.T(), admin, testJWTSecret)
}

func (s *CatalogHandlerIntegrationTestSuite) listSlugs(path string) []string {
	w := doJSON(s.T(), s.router, http.MethodGet, path, nil, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp []map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))

	slugs := make([]string, 0, len(resp))
	for _, item := range resp {
		slugs = append(slugs, item["slug"].(string))
	}
	return slugs
}

func (s *CatalogHandlerIntegrationTestSuite) TestCategories_CreateListDelete() {
	w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/categories", gin.H{
		"name": "Movies",
		"slug": "movies",
	}, s.adminHeader)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	s.Equal([]string{"movies"}, s.listSlugs("/api/v1/categories"))

	w = doJSON(s.T(), s.router, http.MethodDelete, "/api/v1/categories/movies", nil, s.adminHeader)
	s.Require().Equal(http.StatusNoContent, w.Code)

	s.Empty(s.listSlugs("/api/v1/categories"))
}

func (s *CatalogHandlerIntegrationTestSuite) TestCategories_DuplicateSlug() {
	for i, wantCode := range []int{http.StatusCreated, http.StatusBadRequest} {
		w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/categories", gin.H{
			"name": "Movies",
			"slug": "movies",
		}, s.adminHeader)
		s.Equal(wantCode, w.Code, "attempt %d: %s", i, w.Body.String())
	}
}

func (s *CatalogHandlerIntegrationTestSuite) TestCategories_InvalidSlug() {
	w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/categories", gin.H{
		"name": "Movies",
		"slug": "bad slug!",
	}, s.adminHeader)

	s.Equal(http.StatusBadRequest, w.Code)
	resp := decodeJSON(s.T(), w)
	errs, ok := resp["errors"].(map[string]any)
	s.Require().True(ok, w.Body.String())
	s.Contains(errs, "slug")
}

func (s *CatalogHandlerIntegrationTestSuite) TestCategories_MutationRequiresAdmin() {
	plain := testutil.CreateTestUser(s.T(), s.testDB.DB, "plain", models.RoleUser)
	header := testutil.AuthHeader(s.T(), plain, testJWTSecret)

	w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/categories", gin.H{
		"name": "Movies",
		"slug": "movies",
	}, header)
	s.Equal(http.StatusForbidden, w.Code)

	w = doJSON(s.T(), s.router, http.MethodDelete, "/api/v1/categories/movies", nil, header)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *CatalogHandlerIntegrationTestSuite) TestCategories_DeleteUnknownSlug() {
	w := doJSON(s.T(), s.router, http.MethodDelete, "/api/v1/categories/ghost", nil, s.adminHeader)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *CatalogHandlerIntegrationTestSuite) TestGenres_SearchFilter() {
	for _, g := range []gin.H{
		{"name": "Drama", "slug": "drama"},
		{"name": "Dark Comedy", "slug": "dark-comedy"},
		{"name": "Western", "slug": "western"},
	} {
		w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/genres", g, s.adminHeader)
		s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	s.ElementsMatch([]string{"drama", "dark-comedy", "western"}, s.listSlugs("/api/v1/genres"))
	s.ElementsMatch([]string{"dark-comedy"}, s.listSlugs("/api/v1/genres?search=dark"))
	s.ElementsMatch([]string{"drama"}, s.listSlugs("/api/v1/genres?search=DRAM"))
	s.Empty(s.listSlugs("/api/v1/genres?search=horror"))
}

func TestCatalogHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogHandlerIntegrationTestSuite))
}
