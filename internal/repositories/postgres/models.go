package postgres

import (
	"time"

	domain "github.com/paperloft/api/internal/domain"
)

type categoryModel struct {
	ID       string  `gorm:"primaryKey;size:26"`
	Name     string  `gorm:"size:128;uniqueIndex"`
	ParentID *string `gorm:"size:26;index"`

	Children []categoryModel `gorm:"foreignKey:ParentID"`
	Products []productModel  `gorm:"foreignKey:CategoryID"`
}

func (categoryModel) TableName() string { return "categories" }

type productModel struct {
	ID          string `gorm:"primaryKey;size:26"`
	Name        string `gorm:"size:255;index"`
	Price       int64
	Quantity    int `gorm:"check:quantity >= 0"`
	Description string
	ImageURL    string
	CategoryID  *string `gorm:"size:26;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productModel) TableName() string { return "products" }

type addressModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Street    string
	Ward      string
	District  string
	City      string
	Country   string
	Apartment string
}

func (addressModel) TableName() string { return "addresses" }

type customerModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	FullName    string `gorm:"size:255"`
	Email       string `gorm:"size:255;uniqueIndex"`
	Gender      string `gorm:"size:32"`
	DateOfBirth string `gorm:"size:32"`
	AddressID   int64
	Address     addressModel `gorm:"foreignKey:AddressID"`
	CreatedAt   time.Time
}

func (customerModel) TableName() string { return "customers" }

type orderModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	CustomerID int64  `gorm:"index"`
	Status     string `gorm:"size:32;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items    []orderItemModel `gorm:"foreignKey:OrderID"`
	Customer *customerModel   `gorm:"foreignKey:CustomerID"`
	Payment  *paymentModel    `gorm:"foreignKey:OrderID"`
}

func (orderModel) TableName() string { return "orders" }

type orderItemModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	OrderID   int64  `gorm:"index"`
	ProductID string `gorm:"size:26;index"`
	Quantity  int

	Product *productModel `gorm:"foreignKey:ProductID"`
}

func (orderItemModel) TableName() string { return "order_items" }

type paymentModel struct {
	ID        string `gorm:"primaryKey;size:26"`
	OrderID   int64  `gorm:"index"`
	Amount    int64
	Method    string `gorm:"size:32"`
	Status    string `gorm:"size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (paymentModel) TableName() string { return "payments" }

// Converters --------------------------------------------------------------

func (m productModel) toDomain() domain.Product {
	return domain.Product{
		ID:          m.ID,
		Name:        m.Name,
		Price:       m.Price,
		Quantity:    m.Quantity,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		CategoryID:  m.CategoryID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func productFromDomain(p domain.Product) productModel {
	return productModel{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (m categoryModel) toDomain() domain.Category {
	cat := domain.Category{
		ID:       m.ID,
		Name:     m.Name,
		ParentID: m.ParentID,
	}
	for _, child := range m.Children {
		cat.Children = append(cat.Children, child.toDomain())
	}
	for _, product := range m.Products {
		cat.Products = append(cat.Products, product.toDomain())
	}
	return cat
}

func (m addressModel) toDomain() domain.Address {
	return domain.Address{
		ID:        m.ID,
		Street:    m.Street,
		Ward:      m.Ward,
		District:  m.District,
		City:      m.City,
		Country:   m.Country,
		Apartment: m.Apartment,
	}
}

func (m customerModel) toDomain() domain.Customer {
	return domain.Customer{
		ID:          m.ID,
		FullName:    m.FullName,
		Email:       m.Email,
		Gender:      m.Gender,
		DateOfBirth: m.DateOfBirth,
		Address:     m.Address.toDomain(),
		CreatedAt:   m.CreatedAt,
	}
}

func (m paymentModel) toDomain() domain.Payment {
	return domain.Payment{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Amount:    m.Amount,
		Method:    domain.PaymentMethod(m.Method),
		Status:    domain.PaymentStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (m orderItemModel) toDomain() domain.OrderItem {
	item := domain.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
	}
	if m.Product != nil {
		product := m.Product.toDomain()
		item.Product = &product
	}
	return item
}

func (m orderModel) toDomain() domain.Order {
	order := domain.Order{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Status:     domain.OrderStatus(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	for _, item := range m.Items {
		order.Items = append(order.Items, item.toDomain())
	}
	if m.Customer != nil {
		customer := m.Customer.toDomain()
		order.Customer = &customer
	}
	if m.Payment != nil {
		payment := m.Payment.toDomain()
		order.Payment = &payment
	}
	return order
}
