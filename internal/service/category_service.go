package service

import (
	"strings"

	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CreateCategoryInput 创建分类输入
type CreateCategoryInput struct {
	ParentID  uint
	Slug      string
	NameJSON  map[string]interface{}
	SortOrder int
}

// List 获取分类列表
func (s *CategoryService) List() ([]models.Category, error) {
	return s.repo.List()
}

// Create 创建分类；父分类必须已存在
func (s *CategoryService) Create(input CreateCategoryInput) (*models.Category, error) {
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		return nil, ErrCategoryInvalid
	}
	taken, err := s.repo.SlugTaken(slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrCategorySlugExists
	}
	if input.ParentID != 0 {
		parent, err := s.repo.GetByID(input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrCategoryInvalid
		}
	}
	category := models.Category{
		ParentID:  input.ParentID,
		Slug:      slug,
		NameJSON:  models.JSON(input.NameJSON),
		SortOrder: input.SortOrder,
	}
	if err := s.repo.Create(&category); err != nil {
		return nil, err
	}
	return &category, nil
}

// Descendants 返回分类及其全部子孙分类 ID
func (s *CategoryService) Descendants(ids []uint) ([]uint, error) {
	categories, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	return newCategoryTree(categories).expand(ids), nil
}
