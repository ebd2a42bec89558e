package service

import (
	"sort"

	"github.com/dujiao-next/promo-engine/internal/models"
)

// categoryTree 父分类 → 子分类
type categoryTree map[uint][]uint

func newCategoryTree(categories []models.Category) categoryTree {
	tree := make(categoryTree, len(categories))
	for _, category := range categories {
		if category.ParentID == 0 || category.ParentID == category.ID {
			continue
		}
		tree[category.ParentID] = append(tree[category.ParentID], category.ID)
	}
	return tree
}

// expand 返回 ids 及其全部子孙分类（去重、升序）
func (t categoryTree) expand(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	queue := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		queue = append(queue, id)
	}
	for i := 0; i < len(queue); i++ {
		for _, child := range t[queue[i]] {
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })
	return queue
}
