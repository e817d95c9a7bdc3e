package servehttp

import (
	"errors"
	"net/http"

	"approvalflow/bizerror"
	"approvalflow/domain"
	"approvalflow/domain/approval"
	"approvalflow/indices/search"
	"approvalflow/misc"
	"approvalflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathApprovalRequests = "/v1/approval-requests"
)

func RegisterApprovalsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathApprovalRequests, middleWares...)
	g.POST("", handleCreateApprovalRequest)
	g.GET("", handleQueryApprovalRequests)
	g.GET(":id", handleDetailApprovalRequest)
	g.GET(":id/history", handleQueryApprovalHistory)
	g.POST(":id/approval", handleApprove)
	g.POST(":id/rejection", handleReject)

	p := r.Group("/v1/pending-approvals", middleWares...)
	p.GET("", handleQueryPendingApprovals)

	q := r.Group("/v1/approval-search", middleWares...)
	q.GET("", handleSearchApprovals)
}

func handleCreateApprovalRequest(c *gin.Context) {
	creation := domain.ApprovalRequestCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	created, err := approval.CreateApprovalRequestFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	// command surface only hands back the id, callers re-query for display data
	c.JSON(http.StatusCreated, gin.H{"id": &created.ID})
}

func handleApprove(c *gin.Context) {
	parsedId := parseId(c)

	command := domain.ApprovalCommand{}
	if err := c.ShouldBindBodyWith(&command, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	updated, err := approval.ApproveRequestFunc(parsedId, &command, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"id": &updated.ID})
}

func handleReject(c *gin.Context) {
	parsedId := parseId(c)

	command := domain.RejectionCommand{}
	if err := c.ShouldBindBodyWith(&command, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	updated, err := approval.RejectRequestFunc(parsedId, &command, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"id": &updated.ID})
}

func handleQueryApprovalRequests(c *gin.Context) {
	query := domain.ApprovalRequestQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	requests, total, err := approval.QueryApprovalRequestsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: requests, Total: total})
}

func handleQueryPendingApprovals(c *gin.Context) {
	query := domain.PendingApprovalQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	requests, total, err := approval.QueryPendingApprovalsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: requests, Total: total})
}

func handleDetailApprovalRequest(c *gin.Context) {
	detail, err := approval.DetailApprovalRequestFunc(parseId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func handleQueryApprovalHistory(c *gin.Context) {
	history, err := approval.QueryApprovalHistoryFunc(parseId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func handleSearchApprovals(c *gin.Context) {
	query := search.ApprovalSearchQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	details, err := search.SearchApprovalsFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: details, Total: uint64(len(details))})
}

func parseId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}
