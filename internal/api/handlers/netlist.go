package handlers

import (
	"net/http"

	"agentsim/internal/api/models"
	"agentsim/internal/netlist"

	"github.com/gin-gonic/gin"
)

// ListNetlists handles GET /api/v1/netlists
func ListNetlists(c *gin.Context) {
	all := netlist.All()
	out := make([]models.NetlistInfo, 0, len(all))
	for _, n := range all {
		out = append(out, models.NetlistInfo{
			Name:        n.Name,
			Description: n.Description,
			Parameters:  n.Params,
		})
	}
	c.JSON(http.StatusOK, gin.H{"netlists": out})
}
