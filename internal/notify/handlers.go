package notify

import "fmt"

// Built-in event types.
const (
	TypeUserRegistered     = "USER_REGISTERED"
	TypeUserLoggedIn       = "USER_LOGGED_IN"
	TypeLowStockAlert      = "LOW_STOCK_ALERT"
	TypeOrderStatusUpdated = "ORDER_STATUS_UPDATED"
)

// BuiltinHandlers returns the renderers for the built-in event types, keyed
// by type tag. The consumer registers these at startup; additional types are
// added by registration, not by new entry points.
func BuiltinHandlers() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		TypeUserRegistered:     RenderUserRegistered,
		TypeUserLoggedIn:       RenderUserLoggedIn,
		TypeLowStockAlert:      RenderLowStockAlert,
		TypeOrderStatusUpdated: RenderOrderStatusUpdated,
	}
}

// RenderUserRegistered renders the welcome email sent after signup.
// Required fields: username, email.
func RenderUserRegistered(payload map[string]any) (Content, error) {
	username, err := stringField(payload, "username")
	if err != nil {
		return Content{}, err
	}
	email, err := stringField(payload, "email")
	if err != nil {
		return Content{}, err
	}
	return Content{
		RecipientHint: fmt.Sprintf("user:%s <%s>", username, email),
		Subject:       "Welcome to the shop!",
		Body: fmt.Sprintf("Thank you for registering, %s! Your account has been created successfully.",
			username),
	}, nil
}

// RenderUserLoggedIn renders a login alert. Required fields: username.
// timestamp is included verbatim when present.
func RenderUserLoggedIn(payload map[string]any) (Content, error) {
	username, err := stringField(payload, "username")
	if err != nil {
		return Content{}, err
	}
	at := optField(payload, "timestamp", "unknown time")
	return Content{
		RecipientHint: "user:" + username,
		Subject:       "Login alert",
		Body:          fmt.Sprintf("User %s has logged in at %s.", username, at),
	}, nil
}

// RenderLowStockAlert renders the restock warning for admins. Required
// fields: productName, currentStock, threshold. productId is optional.
func RenderLowStockAlert(payload map[string]any) (Content, error) {
	productName, err := stringField(payload, "productName")
	if err != nil {
		return Content{}, err
	}
	currentStock, err := numField(payload, "currentStock")
	if err != nil {
		return Content{}, err
	}
	threshold, err := numField(payload, "threshold")
	if err != nil {
		return Content{}, err
	}
	productID := optField(payload, "productId", "n/a")
	return Content{
		RecipientHint: "admins",
		Subject:       fmt.Sprintf("Low stock alert: %s", productName),
		Body: fmt.Sprintf("Product %s (ID: %s) is down to %s units, below the threshold of %s. Please restock immediately.",
			productName, productID, currentStock, threshold),
	}, nil
}

// RenderOrderStatusUpdated renders a shipping status update for the ordering
// user. Required fields: username, orderId, shippingStatus.
func RenderOrderStatusUpdated(payload map[string]any) (Content, error) {
	username, err := stringField(payload, "username")
	if err != nil {
		return Content{}, err
	}
	orderID := optField(payload, "orderId", "")
	if orderID == "" {
		return Content{}, fmt.Errorf("%w: missing field %q", ErrMalformedPayload, "orderId")
	}
	shippingStatus, err := stringField(payload, "shippingStatus")
	if err != nil {
		return Content{}, err
	}
	return Content{
		RecipientHint: "user:" + username,
		Subject:       fmt.Sprintf("Order #%s status update", orderID),
		Body: fmt.Sprintf("Hi %s, the shipping status of your order #%s is now: %s.",
			username, orderID, shippingStatus),
	}, nil
}
