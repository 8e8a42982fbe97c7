package service

import (
	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/logger"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/repository"
)

// GenealogyService 推荐族谱服务
type GenealogyService struct {
	userRepo repository.UserRepository
	maxLevel int
}

// NewGenealogyService 创建推荐族谱服务
func NewGenealogyService(userRepo repository.UserRepository, maxLevel int) *GenealogyService {
	if maxLevel <= 0 {
		maxLevel = constants.MaxCommissionLevel
	}
	return &GenealogyService{
		userRepo: userRepo,
		maxLevel: maxLevel,
	}
}

// Ancestor 推荐链上的一位上级
type Ancestor struct {
	Level int          `json:"level"` // 距离起点的层级（直接推荐人为 1）
	User  *models.User `json:"user"`
}

// AncestorsOf 沿推荐边向上回溯推荐链，直接推荐人为第 1 层。
// 已访问节点不会二次进入，推荐人缺失时返回已走到的部分链。
func (s *GenealogyService) AncestorsOf(userID uint) ([]Ancestor, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	start, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, ErrUserNotFound
	}

	ancestors := make([]Ancestor, 0)
	visited := map[uint]bool{start.ID: true}
	current := start
	for level := 1; level <= s.maxLevel; level++ {
		if current.SponsorID == nil || *current.SponsorID == 0 {
			break
		}
		sponsorID := *current.SponsorID
		if visited[sponsorID] {
			logger.Warnw("genealogy_sponsor_cycle_detected",
				"user_id", userID,
				"repeated_id", sponsorID,
				"level", level,
			)
			break
		}
		sponsor, err := s.userRepo.GetByID(sponsorID)
		if err != nil {
			return nil, err
		}
		if sponsor == nil {
			// 推荐人数据缺失，返回已有的部分链
			logger.Warnw("genealogy_sponsor_missing",
				"user_id", userID,
				"sponsor_id", sponsorID,
				"level", level,
			)
			break
		}
		visited[sponsorID] = true
		ancestors = append(ancestors, Ancestor{Level: level, User: sponsor})
		current = sponsor
	}
	return ancestors, nil
}

// DescendantNode 下钻树节点
type DescendantNode struct {
	Level int          `json:"level"`
	User  *models.User `json:"user"`
}

// DescendantsResult 下钻遍历结果
type DescendantsResult struct {
	Nodes     []DescendantNode `json:"nodes"`
	Truncated bool             `json:"truncated"` // 达到深度或节点上限后被截断
}

// DescendantsOf 按层做批量 BFS 下钻，深度与节点数都有上限，超限静默截断。
func (s *GenealogyService) DescendantsOf(userID uint, maxDepth, maxNodes int) (*DescendantsResult, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	if maxDepth <= 0 || maxDepth > constants.DescendantMaxDepth {
		maxDepth = constants.DescendantMaxDepth
	}
	if maxNodes <= 0 || maxNodes > constants.DescendantMaxNodes {
		maxNodes = constants.DescendantMaxNodes
	}

	result := &DescendantsResult{Nodes: make([]DescendantNode, 0)}
	visited := map[uint]bool{userID: true}
	frontier := []uint{userID}

	for depth := 1; depth <= maxDepth; depth++ {
		if len(frontier) == 0 {
			break
		}
		children, err := s.userRepo.ListBySponsorIDs(frontier)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			break
		}
		next := make([]uint, 0, len(children))
		for i := range children {
			child := children[i]
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			if len(result.Nodes) >= maxNodes {
				result.Truncated = true
				logger.Infow("genealogy_descendants_truncated",
					"user_id", userID,
					"depth", depth,
					"max_nodes", maxNodes,
				)
				return result, nil
			}
			result.Nodes = append(result.Nodes, DescendantNode{Level: depth, User: &children[i]})
			next = append(next, child.ID)
		}
		frontier = next
	}
	if len(frontier) > 0 && len(result.Nodes) > 0 {
		// 还有下一层但已到达深度上限
		deeper, err := s.userRepo.ListBySponsorIDs(frontier)
		if err == nil && len(deeper) > 0 {
			result.Truncated = true
		}
	}
	return result, nil
}

// DirectReferralStats 直推统计
type DirectReferralStats struct {
	Total     int64 `json:"total"`
	Activated int64 `json:"activated"`
}

// DirectStats 统计直推人数与其中已购买套餐的人数（使用 SQL 聚合，不受下钻截断影响）
func (s *GenealogyService) DirectStats(userID uint) (*DirectReferralStats, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	total, err := s.userRepo.CountDirectReferrals(userID)
	if err != nil {
		return nil, err
	}
	activated, err := s.userRepo.CountActivatedDirectReferrals(userID)
	if err != nil {
		return nil, err
	}
	return &DirectReferralStats{Total: total, Activated: activated}, nil
}
