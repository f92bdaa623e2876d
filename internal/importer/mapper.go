package importer

import (
	"fmt"
	"strings"
)

// Header alias sets, ordered by how often each spelling shows up in real
// distributor sheets. English and Arabic variants are matched through the
// same resolver, so "الإسم التجاري" and "الاسم التجاري" land on the same
// field despite the hamza difference.
var (
	tradeNameAliases = []string{
		"Trade Name", "Name", "ItemName", "Drug Name", "Description",
		"اسم الدواء", "الاسم", "الاسم التجاري", "الإسم التجاري", "الصنف", "المادة",
	}
	agentNameAliases = []string{
		"Agent", "Agent Name", "Distributor", "Supplier",
		"الوكيل", "الموزع", "المورد", "اسم الوكيل",
	}
	manufacturerAliases = []string{
		"Manufacturer", "Company", "Brand",
		"الشركة المصنعة", "المصنع", "الشركة",
	}
	publicPriceAliases = []string{
		"Public Price", "Price", "Retail Price",
		"سعر الجمهور", "السعر", "سعر البيع",
	}
	agentPriceAliases = []string{
		"Agent Price", "Cost", "Pharmacy Price", "Whole Sale",
		"سعر الصيدلي", "التكلفة", "سعر الشراء",
	}
	priceBeforeDiscountAliases = []string{
		"Old Price", "Price Before", "Original Price",
		"السعر قبل الخصم", "سعر سابق", "قبل الخصم", "قبل التخفيض",
	}
	discountPercentAliases = []string{
		"Discount", "Discount %", "Bonus",
		"نسبة الخصم", "الخصم", "نسبة التخفيض", "نسبة الخصم %",
	}
)

// Preview is one drug row as mapped from an uploaded file, before any
// identifier or provenance is attached.
type Preview struct {
	TradeName           string  `json:"tradeName"`
	AgentName           string  `json:"agentName"`
	Manufacturer        string  `json:"manufacturer"`
	PublicPrice         float64 `json:"publicPrice"`
	AgentPrice          float64 `json:"agentPrice"`
	PriceBeforeDiscount float64 `json:"priceBeforeDiscount"`
	DiscountPercent     float64 `json:"discountPercent"`
}

// MapRow resolves one raw row against every alias set. Rows without a trade
// name map to (zero, false) and are dropped by the caller. A missing
// price-before-discount defaults to the public price, so a sheet that never
// carried discounts still round-trips cleanly.
func MapRow(row RawRow) (Preview, bool) {
	name, _ := ResolveValue(row, tradeNameAliases)
	tradeName := strings.TrimSpace(cellString(name))
	if tradeName == "" {
		return Preview{}, false
	}

	agent, _ := ResolveValue(row, agentNameAliases)
	maker, _ := ResolveValue(row, manufacturerAliases)
	public, _ := ResolveValue(row, publicPriceAliases)
	cost, _ := ResolveValue(row, agentPriceAliases)
	before, _ := ResolveValue(row, priceBeforeDiscountAliases)
	discount, _ := ResolveValue(row, discountPercentAliases)

	preview := Preview{
		TradeName:           tradeName,
		AgentName:           strings.TrimSpace(cellString(agent)),
		Manufacturer:        strings.TrimSpace(cellString(maker)),
		PublicPrice:         CleanNumber(public),
		AgentPrice:          CleanNumber(cost),
		PriceBeforeDiscount: CleanNumber(before),
		DiscountPercent:     CleanNumber(discount),
	}
	if preview.PriceBeforeDiscount == 0 {
		preview.PriceBeforeDiscount = preview.PublicPrice
	}
	return preview, true
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// trailing-zero free, the way a sheet displays it
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
	default:
		return fmt.Sprint(t)
	}
}
