package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, Status(CodeOK))
	assert.Equal(t, http.StatusConflict, Status(CodeConflict))
	assert.Equal(t, http.StatusInternalServerError, Status(42))
}

func TestErrorKeepsDataObject(t *testing.T) {
	b, err := json.Marshal(Error(CodeNotFound, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":404,"msg":"Not Found","data":{}}`, string(b))

	b, err = json.Marshal(OK(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"msg":"OK","data":{}}`, string(b))
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, CodeForbidden, "Access Denied, Admin Only")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"code":403,"msg":"Access Denied, Admin Only","data":{}}`, w.Body.String())
}
