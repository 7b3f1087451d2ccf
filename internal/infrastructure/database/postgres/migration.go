// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/your-org/ambika-backend/internal/domain/cart"
	"github.com/your-org/ambika-backend/internal/domain/coupon"
	"github.com/your-org/ambika-backend/internal/domain/inventory"
	"github.com/your-org/ambika-backend/internal/domain/order"
	"github.com/your-org/ambika-backend/internal/domain/product"
	"github.com/your-org/ambika-backend/internal/domain/user"
	"github.com/your-org/ambika-backend/internal/domain/wishlist"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// User domain
		&user.User{},
		&user.Address{},

		// Catalog
		&product.Category{},
		&product.Product{},
		&product.Variant{},

		// Coupons
		&coupon.Coupon{},
		&coupon.Usage{},

		// Cart
		&cart.Cart{},
		&cart.Item{},

		// Stock ledger
		&inventory.Movement{},

		// Orders
		&order.Order{},
		&order.Item{},
		&order.StatusHistory{},

		// Wishlist
		&wishlist.Item{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",

		// Catalog indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_active ON categories(parent_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_active ON product_variants(product_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_stock ON product_variants(stock)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_code_active ON coupons(code, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_coupons_valid_window ON coupons(valid_from, valid_until)",
		"CREATE INDEX IF NOT EXISTS idx_coupon_usages_coupon_user ON coupon_usages(coupon_id, user_id)",
		"CREATE INDEX IF NOT EXISTS idx_coupon_usages_order ON coupon_usages(order_id)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_product ON cart_items(cart_id, product_id, variant_id)",
		"CREATE INDEX IF NOT EXISTS idx_carts_expires_at ON carts(expires_at)",

		// Stock ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_variant_created ON stock_movements(variant_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_reference ON stock_movements(reference_type, reference_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_placed_at ON orders(placed_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_variant ON order_items(variant_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, timestamp)",
	}

	successCount := 0
	failCount := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := m.seedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{Name: "Sarees", Slug: "sarees", Description: "Silk, cotton and designer sarees", IsActive: true},
		{Name: "Kurtis", Slug: "kurtis", Description: "Casual and festive kurtis", IsActive: true},
		{Name: "Lehengas", Slug: "lehengas", Description: "Bridal and party lehengas", IsActive: true},
		{Name: "Dupattas", Slug: "dupattas", Description: "Dupattas and stoles", IsActive: true},
	}

	for _, category := range categories {
		var existing product.Category
		err := m.db.Where("slug = ?", category.Slug).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing user.User
	err := m.db.Where("email = ?", "admin@ambika.local").First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := user.User{
		Email:    "admin@ambika.local",
		Password: string(hash),
		Name:     "Store Admin",
		IsActive: true,
		IsAdmin:  true,
	}
	return m.db.Create(&admin).Error
}

func (m *Migration) seedProducts() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var sarees product.Category
	if err := m.db.Where("slug = ?", "sarees").First(&sarees).Error; err != nil {
		return err
	}

	discounted := int64(649900)
	p := product.Product{
		Name:        "Banarasi Silk Saree",
		Slug:        "banarasi-silk-saree",
		Description: "Handwoven Banarasi silk saree with zari border",
		BasePrice:   749900,
		CategoryID:  sarees.ID,
		IsActive:    true,
		IsFeatured:  true,
		Tags:        "silk,banarasi,wedding",
		Variants: []product.Variant{
			{SKU: "BSS-RED-FS", Size: "Free Size", Color: "Red", Price: 749900, DiscountPrice: &discounted, Stock: 12, IsActive: true},
			{SKU: "BSS-GRN-FS", Size: "Free Size", Color: "Green", Price: 749900, Stock: 8, IsActive: true},
		},
	}
	return m.db.Create(&p).Error
}

func (m *Migration) seedCoupons() error {
	var count int64
	if err := m.db.Model(&coupon.Coupon{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	maxDiscount := int64(50000)
	welcome := coupon.Coupon{
		Code:              "WELCOME10",
		Name:              "Welcome Offer",
		Description:       "10% off your first order",
		Type:              coupon.TypePercentage,
		Value:             10,
		MinimumAmount:     100000,
		MaximumDiscount:   &maxDiscount,
		UsageLimitPerUser: 1,
		NewUsersOnly:      true,
		IsActive:          true,
		ValidFrom:         time.Now(),
		ValidUntil:        time.Now().AddDate(1, 0, 0),
	}
	return m.db.Create(&welcome).Error
}

// GetTableInfo logs row counts per table, a development aid
func (m *Migration) GetTableInfo() {
	tables := []string{
		"users", "addresses", "categories", "products", "product_variants",
		"coupons", "coupon_usages", "carts", "cart_items",
		"stock_movements", "orders", "order_items", "order_status_history",
		"wishlist_items",
	}

	log.Println("📊 Table row counts:")
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			log.Printf("  %s: error (%v)", table, err)
			continue
		}
		log.Printf("  %s: %d", table, count)
	}
}
