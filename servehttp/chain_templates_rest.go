package servehttp

import (
	"net/http"

	"approvalflow/bizerror"
	"approvalflow/domain"
	"approvalflow/domain/chain"
	"approvalflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathChainTemplates = "/v1/chain-templates"
)

func RegisterChainTemplatesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathChainTemplates, middleWares...)
	g.GET("", handleQueryChainTemplates)
	g.POST("", handleCreateChainTemplate)
	g.GET(":id", handleDetailChainTemplate)
	g.PUT(":id/levels", handleReplaceChainLevels)
}

func handleQueryChainTemplates(c *gin.Context) {
	query := domain.ChainTemplateQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	views, err := chain.QueryChainTemplateViewsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, views)
}

func handleCreateChainTemplate(c *gin.Context) {
	creation := domain.ChainTemplateCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	created, err := chain.CreateChainTemplateFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"id": &created.ID})
}

func handleDetailChainTemplate(c *gin.Context) {
	view, err := chain.DetailChainTemplateViewFunc(parseId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func handleReplaceChainLevels(c *gin.Context) {
	parsedId := parseId(c)

	var commands []domain.ChainLevelCommand
	if err := c.ShouldBindBodyWith(&commands, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := chain.ReplaceChainLevelsFunc(parsedId, commands, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"id": &parsedId})
}
