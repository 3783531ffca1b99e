// Package classify reconciles category signals into a single board-type
// decision. The precedence is breadcrumb category, then structured
// attributes, then product-name keywords, in decreasing reliability:
// breadcrumbs are authoritative but absent on some layouts, so each tier
// approximates the one above it from weaker evidence.
package classify

import (
	"strings"
)

// BoardType is the product-line bucket a record is classified into.
type BoardType string

const (
	BoardExternalSSD BoardType = "External SSD"
	BoardInternalSSD BoardType = "Internal SSD"
	BoardMicroSD     BoardType = "Micro SD"
	BoardSD          BoardType = "SD"
	BoardFlashDrive  BoardType = "Flash Drive"
	BoardUnknown     BoardType = "Unknown"
)

// Keyword lists. Membership is part of the classification contract;
// changing a list changes which bucket borderline products land in.
var (
	ExternalKeywords = []string{"external", "exter", "portable", "usb", "drive for mac", "drive for pc", "type-c"}
	InternalKeywords = []string{"internal", "m.2", "ide", "sata", "2.5", "pcie", "2280", "gen4 x4", "gen3 x4"}
	SDKeywords       = []string{"sdxc", "sdhc", "sd", "secure digital card", "tf card", "tf memory card"}
	SSDKeywords      = []string{"ssd", "solid state drive", "solid state hard drive"}
	MicroKeywords    = []string{"tf card", "tf memory card", "micro"}
)

// breadcrumb category text -> board type, exact match only.
var breadcrumbMap = map[string]BoardType{
	"Micro SD Cards":              BoardMicroSD,
	"SD Cards":                    BoardSD,
	"Internal Solid State Drives": BoardInternalSSD,
	"External Solid State Drives": BoardExternalSSD,
	"USB Flash Drives":            BoardFlashDrive,
}

// Signals carries the raw inputs to one board-type decision. All fields
// are optional; empty strings simply fail their tier.
type Signals struct {
	Breadcrumb             string
	ProductName            string
	HardDiskDescription    string
	FlashMemoryType        string
	ConnectivityTechnology string
	HardwareConnectivity   string
	HardwareInterface      string
	InstallationType       string
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// fromBreadcrumb maps the last breadcrumb node through the exact-match
// table. An SD-family breadcrumb is refined to Micro SD when the product
// name carries a micro/TF token.
func fromBreadcrumb(breadcrumb, productName string) (BoardType, bool) {
	bt, ok := breadcrumbMap[strings.TrimSpace(breadcrumb)]
	if !ok {
		return BoardUnknown, false
	}
	if bt == BoardSD && containsAny(productName, MicroKeywords) {
		return BoardMicroSD, true
	}
	return bt, true
}

// refineSSD decides external vs internal for a product already known to
// be an SSD: product-name keywords first, installation type as tiebreak.
func refineSSD(productName, installationType string) (BoardType, bool) {
	if containsAny(productName, ExternalKeywords) {
		return BoardExternalSSD, true
	}
	if containsAny(productName, InternalKeywords) {
		return BoardInternalSSD, true
	}
	if installationType != "" {
		if strings.Contains(installationType, "external") {
			return BoardExternalSSD, true
		}
		if strings.Contains(installationType, "internal") {
			return BoardInternalSSD, true
		}
	}
	return BoardUnknown, false
}

// refineSD decides Micro SD vs SD given an SD-family attribute value.
func refineSD(attr, productName string) BoardType {
	if strings.Contains(attr, "micro") || strings.Contains(attr, "tf card") {
		return BoardMicroSD
	}
	if strings.Contains(productName, "micro") {
		return BoardMicroSD
	}
	return BoardSD
}

// DetermineBoardType runs the reconciliation tiers in order and returns
// the first decisive answer. Exhausting every tier yields Unknown.
func DetermineBoardType(sig Signals) BoardType {
	productName := strings.ToLower(sig.ProductName)
	installationType := strings.ToLower(sig.InstallationType)

	// Tier 1: breadcrumb wins outright when present.
	if bt, ok := fromBreadcrumb(sig.Breadcrumb, productName); ok {
		return bt
	}

	// Tier 2/3: SSD detection from the hard-disk description attribute,
	// falling through to the product name when the attribute is absent
	// or inconclusive.
	if desc := strings.ToLower(sig.HardDiskDescription); desc != "" {
		if containsAny(desc, SSDKeywords) {
			if bt, ok := refineSSD(productName, installationType); ok {
				return bt
			}
		} else if strings.Contains(productName, "solid state drive") {
			if bt, ok := refineSSD(productName, installationType); ok {
				return bt
			}
		}
	} else if containsAny(productName, SSDKeywords) {
		if bt, ok := refineSSD(productName, installationType); ok {
			return bt
		}
	}

	// Tier 4: flash drives via flash-memory-type / connectivity
	// attributes, then an explicit mention in the product name.
	flashMemoryType := strings.ToLower(sig.FlashMemoryType)
	connectivity := strings.ToLower(sig.ConnectivityTechnology)
	if flashMemoryType != "" && strings.Contains(flashMemoryType, "usb") {
		return BoardFlashDrive
	}
	if connectivity != "" && strings.Contains(connectivity, "usb") {
		return BoardFlashDrive
	}
	if strings.Contains(productName, "flash drive") {
		return BoardFlashDrive
	}

	// Tier 5: SD family via attributes in fixed order, then the name.
	if flashMemoryType != "" {
		if containsAny(flashMemoryType, SDKeywords) {
			return refineSD(flashMemoryType, productName)
		}
	} else if hc := strings.ToLower(sig.HardwareConnectivity); hc != "" {
		if containsAny(hc, SDKeywords) {
			return refineSD(hc, productName)
		}
	} else if hi := strings.ToLower(sig.HardwareInterface); hi != "" {
		if containsAny(hi, SDKeywords) {
			return refineSD(hi, productName)
		}
	} else if containsAny(productName, SDKeywords) {
		if strings.Contains(productName, "micro") || strings.Contains(productName, "tf card") {
			return BoardMicroSD
		}
		return BoardSD
	}

	return BoardUnknown
}

// divisionMap maps board type to its fixed division code.
var divisionMap = map[BoardType]string{
	BoardExternalSSD: "PSSD",
	BoardInternalSSD: "SSD",
	BoardMicroSD:     "microSD",
	BoardSD:          "SD",
	BoardFlashDrive:  "Flash Drive",
	BoardUnknown:     "Unknown",
}

// BoardNameAndDivision renders the final board_name and division for a
// record. Top-100 bestsellers get a BEST_ prefix on the board name;
// Unknown stays unprefixed.
func BoardNameAndDivision(bt BoardType, isBest bool) (boardName, division string) {
	division = divisionMap[bt]
	if bt == BoardUnknown {
		return string(BoardUnknown), division
	}
	if isBest {
		return "BEST_" + string(bt), division
	}
	return string(bt), division
}
