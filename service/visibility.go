package service

import (
	"github.com/google/uuid"

	"threadsnet/model"
)

// GraphContext 计算可见性所需的观看者社交关系快照
type GraphContext struct {
	Viewer          uuid.UUID
	Friends         map[uuid.UUID]bool // 与观看者互为好友（Accepted）
	FollowedAuthors map[uuid.UUID]bool // 观看者关注的作者
	Blocked         map[uuid.UUID]bool // 观看者的黑名单
}

// NewGraphContext 由 id 列表构造上下文
func NewGraphContext(viewer uuid.UUID, friends, following, blocked []uuid.UUID) *GraphContext {
	return &GraphContext{
		Viewer:          viewer,
		Friends:         idSet(friends),
		FollowedAuthors: idSet(following),
		Blocked:         idSet(blocked),
	}
}

func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// IsVisible 判断观看者能否看到帖子，任一规则命中即可见
func IsVisible(viewer uuid.UUID, post *model.Post, gc *GraphContext) bool {
	if viewer == post.PostedBy {
		return true
	}
	switch post.Visibility {
	case model.VisibilityPublic:
		return true
	case model.VisibilityFriends:
		return gc != nil && gc.Friends[post.PostedBy]
	case model.VisibilityFollowers:
		return gc != nil && gc.FollowedAuthors[post.PostedBy]
	}
	return false
}

// ExcludedByBlock 作者在观看者黑名单中的帖子在列表中被隐藏
func ExcludedByBlock(post *model.Post, gc *GraphContext) bool {
	return gc != nil && gc.Blocked[post.PostedBy]
}

// FilterVisible 列表场景的过滤：不可见或被拉黑的帖子直接省略，保持原有顺序
func FilterVisible(posts []model.Post, gc *GraphContext) []model.Post {
	out := make([]model.Post, 0, len(posts))
	for i := range posts {
		if ExcludedByBlock(&posts[i], gc) || !IsVisible(gc.Viewer, &posts[i], gc) {
			continue
		}
		out = append(out, posts[i])
	}
	return out
}
