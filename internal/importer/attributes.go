package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopfabrik/catalog-import/internal/catalog"
)

// particularAttributes are codes with special bulk-import semantics that do
// not map to a single product attribute. They never trigger creation.
var particularAttributes = []string{
	"_store", "_attribute_set", "_type", "_category", "_root_category", "_product_websites",
	"_tier_price_website", "_tier_price_customer_group", "_tier_price_qty", "_tier_price_price",
	"_links_related_sku", "_group_price_website", "_group_price_customer_group", "_group_price_price",
	"_links_related_position", "_links_crosssell_sku", "_links_crosssell_position", "_links_upsell_sku",
	"_links_upsell_position", "_custom_option_store", "_custom_option_type", "_custom_option_title",
	"_custom_option_is_required", "_custom_option_price", "_custom_option_sku", "_custom_option_max_characters",
	"_custom_option_sort_order", "_custom_option_file_extension", "_custom_option_image_size_x",
	"_custom_option_image_size_y", "_custom_option_row_title", "_custom_option_row_price",
	"_custom_option_row_sku", "_custom_option_row_sort", "_media_attribute_id", "_media_image", "_media_lable",
	"_media_position", "_media_is_disabled",
	// stock fields
	"manage_stock", "use_config_manage_stock", "qty", "min_qty", "use_config_min_qty", "min_sale_qty", "use_config_min_sale_qty",
	"max_sale_qty", "use_config_max_sale_qty", "is_qty_decimal", "backorders", "use_config_backorders", "notify_stock_qty",
	"use_config_notify_stock_qty", "enable_qty_increments", "use_config_enable_qty_inc", "qty_increments",
	"use_config_qty_increments", "is_in_stock", "low_stock_date", "stock_status_changed_auto", "is_decimal_divided",
}

// AttributeRegistry tracks which attribute codes are known to the catalog
// and optionally creates unknown ones. Codes are case-insensitive. One
// registry lives for exactly one import run.
type AttributeRegistry struct {
	store         catalog.AttributeStore
	createMissing bool
	report        *Report
	onCreate      func(*catalog.NewAttribute)

	known        map[string]bool
	missing      map[string]bool
	missingOrder []string
}

// NewAttributeRegistry seeds a registry from the catalog's existing
// attribute codes, the fixed particular-attribute list and the operator's
// ignore list.
func NewAttributeRegistry(ctx context.Context, store catalog.AttributeStore, createMissing bool, ignored []string, report *Report, onCreate func(*catalog.NewAttribute)) (*AttributeRegistry, error) {
	codes, err := store.AttributeCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load attribute codes: %w", err)
	}

	known := make(map[string]bool, len(codes)+len(particularAttributes)+len(ignored))
	for _, code := range codes {
		known[strings.ToLower(code)] = true
	}
	for _, code := range particularAttributes {
		known[code] = true
	}
	for _, code := range ignored {
		known[strings.ToLower(strings.TrimSpace(code))] = true
	}

	return &AttributeRegistry{
		store:         store,
		createMissing: createMissing,
		report:        report,
		onCreate:      onCreate,
		known:         known,
		missing:       make(map[string]bool),
	}, nil
}

// Resolve reports whether values for the given code should be imported.
// Unknown codes are either created (when enabled) or recorded as missing,
// with a notice on the first occurrence only.
func (r *AttributeRegistry) Resolve(ctx context.Context, code string) bool {
	code = strings.ToLower(code)
	if r.known[code] {
		return true
	}

	if !r.createMissing {
		if !r.missing[code] {
			r.report.Notice(fmt.Sprintf("Attribute '%s' does not exist and won't be imported.", code))
		}
		r.markMissing(code)
		return false
	}

	attr := &catalog.NewAttribute{
		Code:           code,
		FrontendLabel:  code,
		FrontendInput:  "select",
		BackendType:    "int",
		IsGlobal:       true,
		IsVisible:      true,
		IsUserDefined:  true,
		IsSearchable:   false,
		IsFilterable:   false,
		IsComparable:   true,
		IsConfigurable: true,
		ApplyTo:        "simple",
		DefaultValue:   "0",
	}
	if r.onCreate != nil {
		r.onCreate(attr)
	}

	if err := r.store.CreateAttribute(ctx, attr); err != nil {
		r.report.Error(fmt.Sprintf("Attribute %s could not be created: %v", code, err))
		r.markMissing(code)
		return false
	}

	r.markMissing(code)
	r.known[code] = true
	attributesCreated.Inc()
	r.report.Notice(fmt.Sprintf("Created attribute %s.", code))
	return true
}

// MissingAttributes returns the codes that were unknown during this run,
// in first-seen order. Created attributes are included.
func (r *AttributeRegistry) MissingAttributes() []string {
	return r.missingOrder
}

func (r *AttributeRegistry) markMissing(code string) {
	if !r.missing[code] {
		r.missing[code] = true
		r.missingOrder = append(r.missingOrder, code)
	}
}
