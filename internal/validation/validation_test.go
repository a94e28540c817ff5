package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/rolodex/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name  string  `json:"name" binding:"required,alphanum,min=3,max=30"`
	Email string  `json:"email" binding:"required,emailaddr"`
	Born  *string `json:"birth_date" binding:"omitempty,birthdate"`
	Kind  string  `json:"number_type" binding:"omitempty,oneof=home work friend"`
}

type listQuery struct {
	Page *int `form:"page" binding:"omitempty,min=1"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonContext(body string) *gin.Context {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	ctx.Request.Header.Set("Content-Type", "application/json")
	return ctx
}

func bindMessage(t *testing.T, body string) string {
	t.Helper()

	var dst signup
	err := BindJSON(jsonContext(body), &dst)
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	return appErr.Message
}

func TestBindJSON_Valid(t *testing.T) {
	var dst signup
	err := BindJSON(jsonContext(`{"name":"andrii","email":"andrii@x.co.uk","birth_date":"25-08-1978"}`), &dst)
	require.NoError(t, err)
	assert.Equal(t, "andrii", dst.Name)
}

func TestBindJSON_Messages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing", `{"email":"a@b.co"}`, `"name" is required`},
		{"too short", `{"name":"ab","email":"a@b.co"}`, `"name" length must be at least 3 characters long`},
		{"too long", `{"name":"` + strings.Repeat("a", 31) + `","email":"a@b.co"}`, `"name" length must be less than or equal to 30 characters long`},
		{"not alphanum", `{"name":"an drii","email":"a@b.co"}`, `"name" must only contain alpha-numeric characters`},
		{"bad email", `{"name":"andrii","email":"a@b.c"}`, `"email" with value "a@b.c" fails to match the required pattern`},
		{"bad birth date", `{"name":"andrii","email":"a@b.co","birth_date":"1978-08-25"}`, `"birth_date" with value "1978-08-25" fails to match the required pattern`},
		{"bad enum", `{"name":"andrii","email":"a@b.co","number_type":"mobile"}`, `"number_type" must be one of [home work friend]`},
		{"wrong type", `{"name":12345,"email":"a@b.co"}`, `"name" must be of type string`},
		{"syntax", `{"name":`, `Request body is not valid JSON`},
		{"empty", ``, `Request body is required`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bindMessage(t, tt.body))
		})
	}
}

func TestBindQuery_Min(t *testing.T) {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, "/?page=0", nil)

	var q listQuery
	err := BindQuery(ctx, &q)
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, `"page" must be greater than or equal to 1`, appErr.Message)
}

func TestEmailPattern(t *testing.T) {
	assert.True(t, EmailPattern.MatchString("andrii@vestibul.co.uk"))
	assert.False(t, EmailPattern.MatchString("andrii@localhost"))
	assert.False(t, EmailPattern.MatchString("an drii@x.com"))
}
