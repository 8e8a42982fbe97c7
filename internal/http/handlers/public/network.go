package public

import (
	"strconv"

	"github.com/upline-next/internal/http/response"
	"github.com/upline-next/internal/models"

	"github.com/gin-gonic/gin"
)

// NetworkMemberView 推荐网络节点视图，只暴露非敏感字段
type NetworkMemberView struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
	Level       int    `json:"level"`
	JoinedAt    string `json:"joined_at"`
}

// GetMyNetworkStats 获取当前会员的直推统计
func (h *Handler) GetMyNetworkStats(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	stats, err := h.GenealogyService.DirectStats(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.network_query_failed", err)
		return
	}
	response.Success(c, stats)
}

// GetMyNetwork 按层下钻当前会员的推荐网络。
// 深度与节点数有上限，超限时 truncated 为 true。
func (h *Handler) GetMyNetwork(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	depth, _ := strconv.Atoi(c.DefaultQuery("depth", "3"))
	result, err := h.GenealogyService.DescendantsOf(uid, depth, 0)
	if err != nil {
		respondError(c, response.CodeInternal, "error.network_query_failed", err)
		return
	}

	nodes := make([]NetworkMemberView, 0, len(result.Nodes))
	for _, node := range result.Nodes {
		nodes = append(nodes, buildNetworkMemberView(node.User, node.Level))
	}
	response.Success(c, gin.H{
		"nodes":     nodes,
		"total":     len(nodes),
		"truncated": result.Truncated,
	})
}

func buildNetworkMemberView(user *models.User, level int) NetworkMemberView {
	view := NetworkMemberView{Level: level}
	if user == nil {
		return view
	}
	view.ID = user.ID
	view.DisplayName = user.DisplayName
	view.Status = user.Status
	view.JoinedAt = user.CreatedAt.Format("2006-01-02")
	return view
}
