package dig_container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/masomo-notify/apps/api/echo"
	"github.com/trezcool/masomo-notify/core"
	"github.com/trezcool/masomo-notify/core/notification"
)

func TestNew(t *testing.T) {
	t.Setenv("ENV", "TEST")
	t.Setenv("WORKDIR", t.TempDir())
	t.Setenv("TEST_DATABASE_ENGINE", "dummy")
	t.Setenv("TEST_SERVER_DISABLEREQLOGS", "true")
	t.Setenv("TEST_FEED_TIMEZONE", "UTC")

	err := New().Invoke(func(conf *core.Config, svc notification.FeedBuilder, server *echoapi.Server, closeDB DBCloser) {
		assert.True(t, conf.TestMode)
		assert.NotNil(t, svc)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, closeDB())
	})
	if err != nil {
		t.Fatalf("Invoke() failed: %v", err)
	}
}

func TestNew_invalidConfig(t *testing.T) {
	t.Setenv("ENV", "TEST")
	t.Setenv("WORKDIR", t.TempDir())
	t.Setenv("TEST_DATABASE_ENGINE", "dummy")
	t.Setenv("TEST_FEED_TIMEZONE", "Mars/Olympus")

	err := New().Invoke(func(*core.Config) {})
	assert.Error(t, err)
}
