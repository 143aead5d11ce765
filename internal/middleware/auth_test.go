package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-hmac-secret")

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	builder := jwt.NewBuilder().
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour))
	if subject != "" {
		builder = builder.Subject(subject)
	}
	token, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, testSecret))
	require.NoError(t, err)
	return string(signed)
}

// identityEcho records the identity the middleware placed in context.
func identityEcho(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "no identity", http.StatusInternalServerError)
			return
		}
		*captured = identity
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuth_ValidBearerToken(t *testing.T) {
	var captured string
	handler := JWTAuth(testSecret)(identityEcho(&captured))

	req := httptest.NewRequest(http.MethodGet, "/hub", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "driver-7"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "driver-7", captured)
}

func TestJWTAuth_QueryParameterToken(t *testing.T) {
	var captured string
	handler := JWTAuth(testSecret)(identityEcho(&captured))

	req := httptest.NewRequest(http.MethodGet, "/hub?access_token="+signedToken(t, "driver-7"), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "driver-7", captured)
}

func TestJWTAuth_MissingTokenRejected(t *testing.T) {
	handler := JWTAuth(testSecret)(identityEcho(new(string)))

	req := httptest.NewRequest(http.MethodGet, "/hub", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_WrongSecretRejected(t *testing.T) {
	handler := JWTAuth([]byte("a-different-secret"))(identityEcho(new(string)))

	req := httptest.NewRequest(http.MethodGet, "/hub", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "driver-7"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_MissingSubjectRejected(t *testing.T) {
	handler := JWTAuth(testSecret)(identityEcho(new(string)))

	req := httptest.NewRequest(http.MethodGet, "/hub", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, ""))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_ExpiredTokenRejected(t *testing.T) {
	token, err := jwt.NewBuilder().
		Subject("driver-7").
		IssuedAt(time.Now().Add(-2 * time.Hour)).
		Expiration(time.Now().Add(-time.Hour)).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, testSecret))
	require.NoError(t, err)

	handler := JWTAuth(testSecret)(identityEcho(new(string)))
	req := httptest.NewRequest(http.MethodGet, "/hub", nil)
	req.Header.Set("Authorization", "Bearer "+string(signed))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNoopAuth_StampsFixedIdentity(t *testing.T) {
	var captured string
	handler := NoopAuth("local-user")(identityEcho(&captured))

	req := httptest.NewRequest(http.MethodGet, "/hub", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "local-user", captured)
}
