package sessions

import (
	"net/http"
	"time"

	"approvalflow/account"
	"approvalflow/authority"
	"approvalflow/bizerror"
	"approvalflow/persistence"
	"approvalflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

func RegisterSessionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/sessions", middleWares...)
	g.POST("", handleLogin)
	g.DELETE("", handleLogout)
}

func RegisterSessionRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/session", middleWares...)
	g.GET("", handleQuerySession)
}

func handleLogin(c *gin.Context) {
	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	user, err := account.FindUserByName(login.Name, persistence.ActiveDataSourceManager.GormDB(c.Request.Context()))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			panic(bizerror.ErrUnauthenticated)
		}
		panic(err)
	}
	if user.Secret != account.HashSha256(login.Password) {
		panic(bizerror.ErrUnauthenticated)
	}

	perms := authority.Permissions{account.SystemViewPermission.ID}
	if user.Admin {
		perms = append(perms, account.SystemAdminPermission.ID)
	}

	token := uuid.New().String()
	s := session.Session{Token: token,
		Identity:    session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname},
		Perms:       perms,
		SigningTime: time.Now()}
	session.TokenCache.Set(token, &s, cache.DefaultExpiration)

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, &s)
}

func handleLogout(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}

func handleQuerySession(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	if s.Token == "" {
		panic(bizerror.ErrUnauthenticated)
	}
	c.JSON(http.StatusOK, s)
}
