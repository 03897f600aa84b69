package notify

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderUserRegistered(t *testing.T) {
	tests := []struct {
		name        string
		payload     map[string]any
		expectError bool
		wantSubject string
		bodyParts   []string
	}{
		{
			name:        "valid payload",
			payload:     map[string]any{"username": "alice", "email": "a@x.com"},
			wantSubject: "Welcome to the shop!",
			bodyParts:   []string{"alice", "Thank you for registering"},
		},
		{
			name:        "missing username",
			payload:     map[string]any{"email": "a@x.com"},
			expectError: true,
		},
		{
			name:        "missing email",
			payload:     map[string]any{"username": "alice"},
			expectError: true,
		},
		{
			name:        "wrong username type",
			payload:     map[string]any{"username": 42, "email": "a@x.com"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := RenderUserRegistered(tt.payload)

			if tt.expectError {
				if err == nil {
					t.Fatal("RenderUserRegistered() expected error but got none")
				}
				if !errors.Is(err, ErrMalformedPayload) {
					t.Errorf("error = %v, want ErrMalformedPayload", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RenderUserRegistered() unexpected error: %v", err)
			}
			if content.Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", content.Subject, tt.wantSubject)
			}
			if !strings.Contains(content.Subject, "Welcome") {
				t.Errorf("Subject %q does not contain %q", content.Subject, "Welcome")
			}
			for _, part := range tt.bodyParts {
				if !strings.Contains(content.Body, part) {
					t.Errorf("Body %q does not contain %q", content.Body, part)
				}
			}
			if !strings.Contains(content.RecipientHint, "a@x.com") {
				t.Errorf("RecipientHint %q does not carry the email", content.RecipientHint)
			}
		})
	}
}

func TestRenderUserLoggedIn(t *testing.T) {
	content, err := RenderUserLoggedIn(map[string]any{"username": "bob", "timestamp": "2026-03-01T10:00:00Z"})
	if err != nil {
		t.Fatalf("RenderUserLoggedIn() unexpected error: %v", err)
	}
	if !strings.Contains(content.Body, "bob") || !strings.Contains(content.Body, "2026-03-01T10:00:00Z") {
		t.Errorf("Body = %q, want username and timestamp", content.Body)
	}

	// timestamp is optional
	content, err = RenderUserLoggedIn(map[string]any{"username": "bob"})
	if err != nil {
		t.Fatalf("RenderUserLoggedIn() without timestamp unexpected error: %v", err)
	}
	if !strings.Contains(content.Body, "unknown time") {
		t.Errorf("Body = %q, want fallback time text", content.Body)
	}

	if _, err := RenderUserLoggedIn(map[string]any{}); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("error = %v, want ErrMalformedPayload", err)
	}
}

func TestRenderLowStockAlert(t *testing.T) {
	tests := []struct {
		name        string
		payload     map[string]any
		expectError bool
		bodyParts   []string
	}{
		{
			name: "numeric fields as numbers",
			payload: map[string]any{
				"productName":  "Widget",
				"productId":    float64(77),
				"currentStock": float64(3),
				"threshold":    float64(10),
			},
			bodyParts: []string{"Widget", "3", "10", "77"},
		},
		{
			name: "numeric fields as strings",
			payload: map[string]any{
				"productName":  "Widget",
				"currentStock": "3",
				"threshold":    "10",
			},
			bodyParts: []string{"3", "10", "n/a"},
		},
		{
			name:        "missing threshold",
			payload:     map[string]any{"productName": "Widget", "currentStock": float64(3)},
			expectError: true,
		},
		{
			name: "non-numeric stock",
			payload: map[string]any{
				"productName":  "Widget",
				"currentStock": "plenty",
				"threshold":    float64(10),
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := RenderLowStockAlert(tt.payload)

			if tt.expectError {
				if !errors.Is(err, ErrMalformedPayload) {
					t.Errorf("error = %v, want ErrMalformedPayload", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RenderLowStockAlert() unexpected error: %v", err)
			}
			if content.RecipientHint != "admins" {
				t.Errorf("RecipientHint = %q, want %q", content.RecipientHint, "admins")
			}
			for _, part := range tt.bodyParts {
				if !strings.Contains(content.Body, part) {
					t.Errorf("Body %q does not contain %q", content.Body, part)
				}
			}
		})
	}
}

func TestRenderOrderStatusUpdated(t *testing.T) {
	content, err := RenderOrderStatusUpdated(map[string]any{
		"username":       "carla",
		"orderId":        float64(1042),
		"shippingStatus": "SHIPPED",
	})
	if err != nil {
		t.Fatalf("RenderOrderStatusUpdated() unexpected error: %v", err)
	}
	for _, part := range []string{"carla", "1042", "SHIPPED"} {
		if !strings.Contains(content.Body, part) {
			t.Errorf("Body %q does not contain %q", content.Body, part)
		}
	}
	if !strings.Contains(content.Subject, "1042") {
		t.Errorf("Subject %q does not contain the order id", content.Subject)
	}

	if _, err := RenderOrderStatusUpdated(map[string]any{"username": "carla", "orderId": float64(1)}); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("error = %v, want ErrMalformedPayload", err)
	}
}

func TestBuiltinHandlers(t *testing.T) {
	handlers := BuiltinHandlers()

	want := []string{TypeUserRegistered, TypeUserLoggedIn, TypeLowStockAlert, TypeOrderStatusUpdated}
	if len(handlers) != len(want) {
		t.Fatalf("BuiltinHandlers() returned %d handlers, want %d", len(handlers), len(want))
	}
	for _, typ := range want {
		if handlers[typ] == nil {
			t.Errorf("BuiltinHandlers() missing handler for %s", typ)
		}
	}
}
