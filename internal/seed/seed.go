// Package seed bootstraps the records monthly billing cannot run without:
// the association journal and the three water-tagged catalog items.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/iitsoft/asovec/internal/catalog/domain"
	journaldomain "github.com/iitsoft/asovec/internal/journal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultJournalCode = "ASOC"
	defaultJournalName = "Association Charges"
)

var defaultWaterItems = []struct {
	name string
	tag  catalogdomain.WaterTag
}{
	{"Water base fee", catalogdomain.TagBaseWaterFee},
	{"Water excess fee", catalogdomain.TagExcessWaterFee},
	{"Inactive meter fee", catalogdomain.TagInactiveMeterFee},
}

// EnsureDefaults is idempotent; it only creates what is missing.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureJournal(ctx, tx, node); err != nil {
			return err
		}
		return ensureWaterItems(ctx, tx, node)
	})
}

func ensureJournal(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var journal journaldomain.Journal
	err := tx.WithContext(ctx).
		Where("association_charge = ?", true).
		First(&journal).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	journal = journaldomain.Journal{
		ID:                node.Generate(),
		Code:              defaultJournalCode,
		Name:              defaultJournalName,
		Type:              "sale",
		AssociationCharge: true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return tx.WithContext(ctx).Create(&journal).Error
}

func ensureWaterItems(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, def := range defaultWaterItems {
		column := ""
		switch def.tag {
		case catalogdomain.TagBaseWaterFee:
			column = "base_water_fee"
		case catalogdomain.TagExcessWaterFee:
			column = "excess_water_fee"
		case catalogdomain.TagInactiveMeterFee:
			column = "inactive_meter_fee"
		}

		var item catalogdomain.CatalogItem
		err := tx.WithContext(ctx).
			Where(column+" = ? AND active = ?", true, true).
			First(&item).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		item = catalogdomain.CatalogItem{
			ID:                   node.Generate(),
			Name:                 def.name,
			Kind:                 catalogdomain.KindService,
			ListPrice:            decimal.Zero,
			IsAssociationService: true,
			WaterDependent:       true,
			Active:               true,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		switch def.tag {
		case catalogdomain.TagBaseWaterFee:
			item.BaseWaterFee = true
		case catalogdomain.TagExcessWaterFee:
			item.ExcessWaterFee = true
		case catalogdomain.TagInactiveMeterFee:
			item.InactiveMeterFee = true
		}
		if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}
