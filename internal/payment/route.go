package payment

import "fmt"

// Route tags the payment path a token was issued for.
type Route string

const (
	RouteDirect   Route = "direct"
	RouteRazorpay Route = "razorpay"
)

var Routes = []Route{RouteDirect, RouteRazorpay}

func ParseRoute(s string) (Route, error) {
	switch Route(s) {
	case RouteDirect, RouteRazorpay:
		return Route(s), nil
	}
	return "", fmt.Errorf("unknown payment route %q", s)
}
