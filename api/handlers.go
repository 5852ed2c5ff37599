package api

import (
	"net/http"

	"github.com/brettbedarf/treefs/requests"
	"github.com/gin-gonic/gin"
)

// Get returns the whole tree.
func (s *Server) Get(c *gin.Context) {
	root, err := s.tree.Get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, root)
}

func (s *Server) Insert(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, err)
		return
	}
	req, err := requests.UnmarshalInsert(body)
	if err != nil {
		writeError(c, err)
		return
	}
	root, err := s.tree.Insert(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, root)
}

func (s *Server) Remove(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, err)
		return
	}
	req, err := requests.UnmarshalRemove(body)
	if err != nil {
		writeError(c, err)
		return
	}
	root, err := s.tree.Remove(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, root)
}

func (s *Server) Rename(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, err)
		return
	}
	req, err := requests.UnmarshalRename(body)
	if err != nil {
		writeError(c, err)
		return
	}
	root, err := s.tree.Rename(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, root)
}

func (s *Server) Move(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, err)
		return
	}
	req, err := requests.UnmarshalMove(body)
	if err != nil {
		writeError(c, err)
		return
	}
	root, err := s.tree.Move(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, root)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
