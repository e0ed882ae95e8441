package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func echoBody(t *testing.T, method, contentType, body string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(StripBlankFields())
	router.Handle(method, "/echo", func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		c.String(http.StatusOK, string(raw))
	})

	req := httptest.NewRequest(method, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestStripBlankFields(t *testing.T) {
	t.Run("removes blank strings at every depth", func(t *testing.T) {
		out := echoBody(t, http.MethodPatch, "application/json",
			`{"exercise":{"name":"","description":"  ","sets":0,"weight":1.50,"done":false,"note":null,"tags":[{"a":""}]}}`)
		assert.JSONEq(t, `{"exercise":{"description":"  ","sets":0,"weight":1.50,"done":false,"note":null,"tags":[{}]}}`, out)
	})

	t.Run("keeps large numbers exact", func(t *testing.T) {
		out := echoBody(t, http.MethodPatch, "application/json; charset=utf-8", `{"n":12345678901234567890}`)
		assert.Equal(t, `{"n":12345678901234567890}`, out)
	})

	t.Run("passes malformed json through", func(t *testing.T) {
		out := echoBody(t, http.MethodPatch, "application/json", `{"name":`)
		assert.Equal(t, `{"name":`, out)
	})

	t.Run("ignores other methods", func(t *testing.T) {
		out := echoBody(t, http.MethodPost, "application/json", `{"name":""}`)
		assert.Equal(t, `{"name":""}`, out)
	})
}

func TestRequestLoggerRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc-123", entries[0].ContextMap()["requestId"])
	assert.Equal(t, generated, entries[1].ContextMap()["requestId"])
	assert.EqualValues(t, http.StatusOK, entries[1].ContextMap()["status"])
}

type stubVerifier struct {
	id  primitive.ObjectID
	err error
}

func (s stubVerifier) VerifyToken(string) (primitive.ObjectID, error) { return s.id, s.err }

func TestOptionalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := primitive.NewObjectID()

	run := func(verifier TokenVerifier, header string) (int, string) {
		router := gin.New()
		router.GET("/", OptionalAuthMiddleware(verifier), func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				c.String(http.StatusOK, "anonymous")
				return
			}
			c.String(http.StatusOK, userID.Hex())
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code, w.Body.String()
	}

	code, body := run(stubVerifier{id: id}, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "anonymous", body)

	code, body = run(stubVerifier{id: id}, "Bearer good")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, id.Hex(), body)

	code, body = run(stubVerifier{err: assert.AnError}, "Bearer bad")
	assert.Equal(t, http.StatusOK, code, "an invalid token on a public route is treated as anonymous")
	assert.Equal(t, "anonymous", body)
}
