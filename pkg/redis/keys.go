package redis

import "fmt"

// SessionCartKey names the JSON blob holding an anonymous session cart.
func SessionCartKey(sessionID string) string {
	return fmt.Sprintf("shopcart:session:cart:%s", sessionID)
}

// RateLimitUserKey names the sliding-window limiter bucket for a user.
func RateLimitUserKey(userID int64) string {
	return fmt.Sprintf("rate_limit:cart:user:%d", userID)
}

// RateLimitIPKey names the limiter bucket for an unauthenticated client.
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("rate_limit:cart:ip:%s", ip)
}
