package profile

import (
	"fmt"
	"strings"

	"routing/internal/pkg/errs"
)

// VehicleClass selects the base parameterization of a profile script.
type VehicleClass string

const (
	VehicleMotorcycle VehicleClass = "motorcycle"
	VehicleVan        VehicleClass = "van"
)

// Validate checks that the class is one of the known vehicle classes.
func (v VehicleClass) Validate() error {
	switch v {
	case VehicleMotorcycle, VehicleVan:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("vehicleClass",
			fmt.Errorf("%q is not a known vehicle class", string(v)))
	}
}

// Variant is one (vehicle class × modifier flags) combination. Each variant
// gets its own profile script, compiled graph, and routing-engine container.
// The set of variants is configuration, not a fixed constant.
type Variant struct {
	Vehicle        VehicleClass
	RatingEnabled  bool
	TrafficEnabled bool
}

// Name returns the variant's stable identifier, used as the build instance
// name, workspace directory name, and container name suffix.
func (v Variant) Name() string {
	parts := []string{string(v.Vehicle)}
	if v.RatingEnabled {
		parts = append(parts, "rating")
	}
	if v.TrafficEnabled {
		parts = append(parts, "traffic")
	}
	if len(parts) == 1 {
		parts = append(parts, "base")
	}
	return strings.Join(parts, "-")
}

// Validate checks the variant's vehicle class.
func (v Variant) Validate() error {
	return v.Vehicle.Validate()
}

// ParseVariant parses a variant from its config form:
// "<vehicle>[:rating][:traffic]", e.g. "van:rating:traffic" or "motorcycle".
func ParseVariant(s string) (Variant, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	v := Variant{Vehicle: VehicleClass(parts[0])}
	if err := v.Vehicle.Validate(); err != nil {
		return Variant{}, err
	}
	for _, flag := range parts[1:] {
		switch flag {
		case "rating":
			v.RatingEnabled = true
		case "traffic":
			v.TrafficEnabled = true
		default:
			return Variant{}, errs.NewValueIsInvalidErrorWithCause("variant",
				fmt.Errorf("unknown modifier %q in %q", flag, s))
		}
	}
	return v, nil
}

// ParseVariants parses a comma-separated variant list from configuration.
func ParseVariants(s string) ([]Variant, error) {
	items := strings.Split(s, ",")
	variants := make([]Variant, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		v, err := ParseVariant(item)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[v.Name()]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("variants",
				fmt.Errorf("duplicate variant %q", v.Name()))
		}
		seen[v.Name()] = struct{}{}
		variants = append(variants, v)
	}
	if len(variants) == 0 {
		return nil, errs.NewValueIsRequiredError("variants")
	}
	return variants, nil
}
