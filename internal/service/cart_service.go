package service

import (
	"github.com/averoza/marketplace/internal/logger"
	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

// CartService cart operations
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates the cart service
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// CartSummary the cart with derived totals. TotalPrice is computed
// from the stored price snapshots, not live catalog prices.
type CartSummary struct {
	Items      []models.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice models.Money      `json:"total_price"`
}

// CartProblem one validation finding
type CartProblem struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Reason      string `json:"reason"` // removed / insufficient_stock / price_updated
	Requested   int    `json:"requested,omitempty"`
	Available   int    `json:"available,omitempty"`
}

// CartValidation outcome of a validation pass
type CartValidation struct {
	IsValid  bool          `json:"is_valid"`
	Problems []CartProblem `json:"problems"`
	Summary  *CartSummary  `json:"summary"`
}

// GetCart returns the user's cart with totals
func (s *CartService) GetCart(userID uint) (*CartSummary, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return summarize(items), nil
}

// AddItem puts quantity units of a product into the cart. When the
// line already exists the quantities merge, and the stock check runs
// against the merged amount. The price snapshot is refreshed.
func (s *CartService) AddItem(userID, productID uint, quantity int) (*CartSummary, error) {
	if quantity < 1 {
		return nil, ErrValidation
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.Purchasable() {
		return nil, &StockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Reason:      ErrProductNotAvailable,
		}
	}

	merged := quantity
	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		merged += existing.Quantity
	}
	if !product.InStock(merged) {
		return nil, &StockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   merged,
			Available:   product.StockQuantity,
			Reason:      ErrInsufficientStock,
		}
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  merged,
		UnitPrice: product.Price,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// UpdateQuantity sets a line to an absolute quantity and refreshes
// the price snapshot.
func (s *CartService) UpdateQuantity(userID, productID uint, quantity int) (*CartSummary, error) {
	if quantity < 1 {
		return nil, ErrValidation
	}
	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCartItemNotFound
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.InStock(quantity) {
		return nil, &StockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.StockQuantity,
			Reason:      ErrInsufficientStock,
		}
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: product.Price,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// RemoveItem drops one line from the cart
func (s *CartService) RemoveItem(userID, productID uint) (*CartSummary, error) {
	if err := s.cartRepo.DeleteByUserAndProduct(userID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// Clear empties the cart
func (s *CartService) Clear(userID uint) error {
	return s.cartRepo.ClearByUser(userID)
}

// Count returns the unit total for the cart badge
func (s *CartService) Count(userID uint) (int64, error) {
	return s.cartRepo.CountItems(userID)
}

// Validate reconciles the cart against the live catalog. Lines whose
// product vanished or left the storefront are removed; insufficient
// stock is reported but the line stays so the buyer can adjust it.
// Stale price snapshots are refreshed in place. Running it twice in a
// row yields the same result.
func (s *CartService) Validate(userID uint) (*CartValidation, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	var problems []CartProblem
	var removeIDs []uint
	kept := items[:0]

	for _, item := range items {
		product := item.Product
		if product == nil || !product.Purchasable() {
			name := ""
			if product != nil {
				name = product.Name
			}
			problems = append(problems, CartProblem{
				ProductID:   item.ProductID,
				ProductName: name,
				Reason:      "removed",
			})
			removeIDs = append(removeIDs, item.ID)
			continue
		}

		if !product.Price.Equal(item.UnitPrice.Decimal) {
			problems = append(problems, CartProblem{
				ProductID:   item.ProductID,
				ProductName: product.Name,
				Reason:      "price_updated",
			})
			refreshed := &models.CartItem{
				UserID:    userID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			}
			if err := s.cartRepo.Upsert(refreshed); err != nil {
				return nil, err
			}
			item.UnitPrice = product.Price
		}

		if !product.InStock(item.Quantity) {
			problems = append(problems, CartProblem{
				ProductID:   item.ProductID,
				ProductName: product.Name,
				Reason:      "insufficient_stock",
				Requested:   item.Quantity,
				Available:   product.StockQuantity,
			})
		}
		kept = append(kept, item)
	}

	if len(removeIDs) > 0 {
		if err := s.cartRepo.DeleteByIDs(removeIDs); err != nil {
			return nil, err
		}
		logger.Infow("cart_validate_pruned", "user_id", userID, "removed", len(removeIDs))
	}

	valid := true
	for _, p := range problems {
		if p.Reason != "price_updated" {
			valid = false
			break
		}
	}

	return &CartValidation{
		IsValid:  valid,
		Problems: problems,
		Summary:  summarize(kept),
	}, nil
}

func summarize(items []models.CartItem) *CartSummary {
	totalItems := 0
	totalPrice := decimal.Zero
	for _, item := range items {
		totalItems += item.Quantity
		totalPrice = totalPrice.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return &CartSummary{
		Items:      items,
		TotalItems: totalItems,
		TotalPrice: models.NewMoneyFromDecimal(totalPrice),
	}
}
