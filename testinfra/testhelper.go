package testinfra

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"approvalflow/authority"
	"approvalflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func BuildSecCtx(id types.ID, perms ...string) *session.Session {
	return &session.Session{
		Identity: session.Identity{ID: id, Name: "user_" + id.String()},
		Perms:    authority.Permissions(perms),
		Context:  context.Background(),
	}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, error) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	bodyBytes, err := ioutil.ReadAll(w.Body)
	if err != nil {
		return -1, "", err
	}
	return w.Code, string(bodyBytes), nil
}
