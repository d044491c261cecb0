package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/placements/internal/placement/domain"
)

func (s *Server) CreatePlacement(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	p, err := s.placementSvc.Submit(c.Request.Context(), body)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (s *Server) ListPlacements(c *gin.Context) {
	items, err := s.placementSvc.FindAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []domain.Placement{}
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetPlacementByID(c *gin.Context) {
	p, err := s.placementSvc.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (s *Server) ReplacePlacement(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	p, err := s.placementSvc.Replace(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (s *Server) DeletePlacement(c *gin.Context) {
	if err := s.placementSvc.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) QueryPlacements(c *gin.Context) {
	var req placementQueryRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	spec, err := req.spec()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.placementSvc.Query(c.Request.Context(), spec, s.caller(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []domain.Placement{}
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) MarketPlacements(c *gin.Context) {
	var req marketQueryRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	spec, err := req.spec()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.placementSvc.Market(c.Request.Context(), domain.MarketRequest{
		Spec:       spec,
		PageNumber: req.PageNumber,
		PageSize:   req.PageSize,
	}, s.caller(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReassignPlacement(c *gin.Context) {
	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	p, err := s.placementSvc.Reassign(c.Request.Context(), c.Param("id"), domain.ReassignRequest{
		TeamID:    req.BrokerTeam.TeamID,
		UserEmail: req.BrokerUser.UserEmail,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (s *Server) caller(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(s.callerHeader()))
}
