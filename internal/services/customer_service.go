package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/harusame/merchandise-manager/internal/models"
	"github.com/harusame/merchandise-manager/internal/rank"
)

// CustomerStats is the derived purchase summary for one customer. The total
// is the raw sale-price sum over the customer's sold items, not a profit
// figure: that revenue total is what drives the rank.
type CustomerStats struct {
	PurchaseCount int64
	TotalPurchase float64
	Rank          rank.Tier
	RankName      string
	RankColor     string
}

// CustomerWithStats pairs a customer row with its computed summary for the
// listing page.
type CustomerWithStats struct {
	models.Customer
	Stats CustomerStats
}

// NextRankInfo describes the distance to the tier above the current one.
type NextRankInfo struct {
	Rank   rank.Tier
	Name   string
	Needed float64
}

// CustomerRef is the {id, name} pair served to item-form pickers.
type CustomerRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CustomerService struct {
	db    *gorm.DB
	ranks rank.Table
}

func NewCustomerService(db *gorm.DB, ranks rank.Table) *CustomerService {
	return &CustomerService{db: db, ranks: ranks}
}

// Stats aggregates the customer's sold items in one query and classifies the
// revenue total.
func (s *CustomerService) Stats(customerID uint) (CustomerStats, error) {
	var row struct {
		PurchaseCount int64
		TotalPurchase float64
	}
	err := s.db.Model(&models.Item{}).
		Select("COUNT(*) AS purchase_count, COALESCE(SUM(sale_price), 0) AS total_purchase").
		Where("customer_id = ?", customerID).
		Where(soldCond).
		Scan(&row).Error
	if err != nil {
		return CustomerStats{}, err
	}
	tier := s.ranks.Classify(row.TotalPurchase)
	return CustomerStats{
		PurchaseCount: row.PurchaseCount,
		TotalPurchase: row.TotalPurchase,
		Rank:          tier,
		RankName:      s.ranks.Name(tier),
		RankColor:     s.ranks.Color(tier),
	}, nil
}

// ListWithStats returns customers annotated with stats, newest first, after
// applying the optional rank filter and case-insensitive name substring
// filter. The per-rank counts cover the returned (filtered) set and always
// carry all four tiers, zero or not.
func (s *CustomerService) ListWithStats(rankFilter, nameSearch string) ([]CustomerWithStats, map[rank.Tier]int, error) {
	var customers []models.Customer
	if err := s.db.Order("id desc").Find(&customers).Error; err != nil {
		return nil, nil, err
	}
	counts := make(map[rank.Tier]int, 4)
	for _, tier := range s.ranks.Tiers() {
		counts[tier] = 0
	}
	tierFilter := rank.Tier(rankFilter)
	filterByRank := rankFilter != "" && rankFilter != "all" && s.ranks.Valid(tierFilter)
	search := strings.ToLower(strings.TrimSpace(nameSearch))

	out := make([]CustomerWithStats, 0, len(customers))
	for _, c := range customers {
		st, err := s.Stats(c.ID)
		if err != nil {
			return nil, nil, err
		}
		if filterByRank && st.Rank != tierFilter {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		out = append(out, CustomerWithStats{Customer: c, Stats: st})
		counts[st.Rank]++
	}
	return out, counts, nil
}

// NextRank reports how much more revenue reaches the next tier, or nil when
// the customer already sits on the terminal tier.
func (s *CustomerService) NextRank(st CustomerStats) *NextRankInfo {
	next, threshold, ok := s.ranks.Next(st.Rank)
	if !ok {
		return nil
	}
	return &NextRankInfo{Rank: next, Name: s.ranks.Name(next), Needed: threshold - st.TotalPurchase}
}

// Purchases lists a customer's sold items, most recent sale first.
func (s *CustomerService) Purchases(customerID uint) ([]models.Item, error) {
	var items []models.Item
	err := s.db.Where("customer_id = ?", customerID).
		Where(soldCond).
		Order("sold_date desc").
		Find(&items).Error
	return items, err
}

func (s *CustomerService) Get(id uint) (models.Customer, error) {
	var c models.Customer
	err := s.db.First(&c, id).Error
	return c, err
}

func (s *CustomerService) Create(c *models.Customer) error {
	return s.db.Create(c).Error
}

func (s *CustomerService) Update(c *models.Customer) error {
	return s.db.Save(c).Error
}

// Delete removes the customer after detaching every item that references it.
// Items are never deleted as a side effect; they just lose the reference.
func (s *CustomerService) Delete(id uint) error {
	if err := s.db.Model(&models.Item{}).
		Where("customer_id = ?", id).
		Update("customer_id", nil).Error; err != nil {
		return err
	}
	res := s.db.Delete(&models.Customer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Picker returns all customers as {id, name} pairs ordered by name, for the
// item form's customer select.
func (s *CustomerService) Picker() ([]CustomerRef, error) {
	var refs []CustomerRef
	err := s.db.Model(&models.Customer{}).
		Select("id, name").
		Order("name").
		Scan(&refs).Error
	return refs, err
}
