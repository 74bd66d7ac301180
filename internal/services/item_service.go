package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/harusame/merchandise-manager/internal/clock"
	"github.com/harusame/merchandise-manager/internal/models"
)

// soldCond matches records whose sold date is populated. The app writes ''
// for "not sold", but NULLs from externally seeded rows must count as unsold
// too, so both are checked.
const soldCond = "sold_date IS NOT NULL AND sold_date != ''"

// Filter is a named restriction on the item listing. At most one is active
// at a time; it combines with the free-text search by AND.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterToday     Filter = "today"
	FilterYesterday Filter = "yesterday"
	FilterThisWeek  Filter = "this_week"
	FilterThisMonth Filter = "this_month"
	FilterNotListed Filter = "not_listed"
	FilterListed    Filter = "listed"
	FilterSold      Filter = "sold"
)

// ParseFilter maps a request parameter to a Filter; anything unrecognized
// (including empty) means no restriction.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterToday, FilterYesterday, FilterThisWeek, FilterThisMonth,
		FilterNotListed, FilterListed, FilterSold:
		return Filter(s)
	}
	return FilterAll
}

// ItemQuery is the input to the item listing: an optional case-insensitive
// substring search over product name, store name and sales platform, plus an
// optional named filter.
type ItemQuery struct {
	Search string
	Filter Filter
}

// ItemStats are the aggregate counters shown above the listing and served by
// /api/stats. They are always computed over the full unfiltered collection.
type ItemStats struct {
	Total       int64   `json:"total"`
	Listed      int64   `json:"listed"`
	Sold        int64   `json:"sold"`
	TotalProfit float64 `json:"total_profit"`
}

type ItemService struct {
	db  *gorm.DB
	clk clock.Clock
}

func NewItemService(db *gorm.DB, clk clock.Clock) *ItemService {
	return &ItemService{db: db, clk: clk}
}

// List returns items matching q, newest id first. Date filters are evaluated
// against the server's current local date.
func (s *ItemService) List(q ItemQuery) ([]models.Item, error) {
	dbq := s.db.Model(&models.Item{})
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		dbq = dbq.Where(
			"lower(product_name) LIKE ? OR lower(store_name) LIKE ? OR lower(sales_platform) LIKE ?",
			like, like, like)
	}
	today := s.clk.Now()
	switch q.Filter {
	case FilterToday:
		dbq = dbq.Where("purchase_date = ?", clock.FormatDate(today))
	case FilterYesterday:
		dbq = dbq.Where("purchase_date = ?", clock.FormatDate(today.AddDate(0, 0, -1)))
	case FilterThisWeek:
		dbq = dbq.Where("purchase_date >= ?", clock.FormatDate(mondayOf(today)))
	case FilterThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		dbq = dbq.Where("purchase_date >= ?", clock.FormatDate(first))
	case FilterNotListed:
		dbq = dbq.Where("is_listed = ?", false)
	case FilterListed:
		// listed but not yet sold; an item with a sold date never shows here
		dbq = dbq.Where("is_listed = ?", true).Where("(sold_date IS NULL OR sold_date = '')")
	case FilterSold:
		dbq = dbq.Where(soldCond)
	}
	var items []models.Item
	if err := dbq.Order("id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// mondayOf returns the Monday of t's ISO week.
func mondayOf(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 { // Sunday
		wd = 7
	}
	return t.AddDate(0, 0, -(wd - 1))
}

// Stats computes the aggregate counters over all items, ignoring whatever
// filter the listing currently shows. The profit sum covers sold items only.
func (s *ItemService) Stats() (ItemStats, error) {
	var st ItemStats
	if err := s.db.Model(&models.Item{}).Count(&st.Total).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&models.Item{}).Where("is_listed = ?", true).Count(&st.Listed).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&models.Item{}).Where(soldCond).Count(&st.Sold).Error; err != nil {
		return st, err
	}
	err := s.db.Model(&models.Item{}).
		Select("COALESCE(SUM(sale_price - purchase_price - shipping_cost - commission), 0)").
		Where(soldCond).
		Scan(&st.TotalProfit).Error
	return st, err
}

func (s *ItemService) Get(id uint) (models.Item, error) {
	var it models.Item
	err := s.db.First(&it, id).Error
	return it, err
}

func (s *ItemService) Create(it *models.Item) error {
	return s.db.Create(it).Error
}

func (s *ItemService) Update(it *models.Item) error {
	return s.db.Save(it).Error
}

func (s *ItemService) Delete(id uint) error {
	res := s.db.Delete(&models.Item{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
