package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdalisay/tourism-data-api/internal/domain"
	"github.com/jdalisay/tourism-data-api/internal/usecases/authenticating"
)

// stubAuthenticator records the user handed to CreateUser; the embedded
// interface panics on anything else, which no test here should reach.
type stubAuthenticator struct {
	authenticating.Authenticator
	created *domain.User
}

func (s *stubAuthenticator) CreateUser(user *domain.User) (*domain.User, error) {
	s.created = user
	return user, nil
}

func TestRegister_forcesEstablishmentAccount(t *testing.T) {
	stub := &stubAuthenticator{}
	handler := Register(stub)

	// A hostile payload claiming regional admin with full scope and an
	// already-active flag.
	body := `{
		"name": "Eve",
		"lastname": "Cruz",
		"email": "eve@example.com",
		"password": "Sup3rSecret",
		"role_id": 1,
		"active": true,
		"region": "Region I",
		"province": "Ilocos Norte",
		"municipality": "Laoag"
	}`

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	if assert.NotNil(t, stub.created) {
		assert.Equal(t, domain.RoleEstablishment, stub.created.RoleID)
		assert.False(t, stub.created.Active)
		assert.Empty(t, stub.created.Region)
		assert.Empty(t, stub.created.Province)
		assert.Empty(t, stub.created.Municipality)
	}
}

func TestCreateUser_keepsPayloadRole(t *testing.T) {
	stub := &stubAuthenticator{}
	handler := CreateUser(stub)

	body := `{
		"name": "Ana",
		"lastname": "Reyes",
		"email": "ana@example.com",
		"password": "Sup3rSecret",
		"role_id": 2,
		"region": "Region I",
		"province": "Ilocos Sur"
	}`

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	if assert.NotNil(t, stub.created) {
		assert.Equal(t, domain.RoleProvincialAdmin, stub.created.RoleID)
		assert.Equal(t, "Ilocos Sur", stub.created.Province)
	}
}

func TestRegister_rejectsMissingCredentials(t *testing.T) {
	stub := &stubAuthenticator{}
	handler := Register(stub)

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"name":"Eve"}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.created)
}
