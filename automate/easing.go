package automate

import (
	"fmt"

	"github.com/fogleman/ease"
)

// Easing maps normalized segment progress in [0, 1] to an eased fraction.
type Easing func(t float64) float64

// EasingByName resolves a configuration easing name. The empty string is
// linear.
func EasingByName(name string) (Easing, error) {
	switch name {
	case "", "linear":
		return ease.Linear, nil
	case "in_quad":
		return ease.InQuad, nil
	case "out_quad":
		return ease.OutQuad, nil
	case "in_out_quad":
		return ease.InOutQuad, nil
	case "in_cubic":
		return ease.InCubic, nil
	case "out_cubic":
		return ease.OutCubic, nil
	case "in_out_cubic":
		return ease.InOutCubic, nil
	case "in_quart":
		return ease.InQuart, nil
	case "out_quart":
		return ease.OutQuart, nil
	case "in_out_quart":
		return ease.InOutQuart, nil
	case "in_quint":
		return ease.InQuint, nil
	case "out_quint":
		return ease.OutQuint, nil
	case "in_out_quint":
		return ease.InOutQuint, nil
	case "in_sine":
		return ease.InSine, nil
	case "out_sine":
		return ease.OutSine, nil
	case "in_out_sine":
		return ease.InOutSine, nil
	case "in_expo":
		return ease.InExpo, nil
	case "out_expo":
		return ease.OutExpo, nil
	case "in_out_expo":
		return ease.InOutExpo, nil
	case "in_circ":
		return ease.InCirc, nil
	case "out_circ":
		return ease.OutCirc, nil
	case "in_out_circ":
		return ease.InOutCirc, nil
	case "in_elastic":
		return ease.InElastic, nil
	case "out_elastic":
		return ease.OutElastic, nil
	case "in_out_elastic":
		return ease.InOutElastic, nil
	case "in_back":
		return ease.InBack, nil
	case "out_back":
		return ease.OutBack, nil
	case "in_out_back":
		return ease.InOutBack, nil
	case "in_bounce":
		return ease.InBounce, nil
	case "out_bounce":
		return ease.OutBounce, nil
	case "in_out_bounce":
		return ease.InOutBounce, nil
	default:
		return nil, fmt.Errorf("unknown easing: %q", name)
	}
}
