// Package http exposes the vacation workflow as a JSON API on gin.
//
// Every response body is an envelope: {"ok","kind","message","data","fields"}.
// "kind" names the failure category and picks the status code; "fields" maps
// request fields to validation messages.
//
// Public routes:
//   - POST /login: {"username","password"}. Returns a session token in the body
//     and in the `session_token` cookie, plus `password_change_required`.
//   - POST /logout: clears the session cookie.
//
// POST /login and POST /password are throttled per client IP and answer 429
// with kind "rate_limited" when the budget is spent.
//
// Authenticated routes accept `Authorization: Bearer <token>` or the cookie.
// Users holding a temporary password may only call POST /password until they
// change it.
//   - POST /password: {"new_password","confirm_password"}.
//   - GET /me/balance: annual leave entitlement, usage and remainder.
//   - POST /vacations, GET /vacations, DELETE /vacations/{id}: submit, list
//     and cancel the caller's requests.
//   - GET /approvals, POST /approvals/{id}/approve, POST /approvals/{id}/reject:
//     the approval queue for part and team leaders.
//   - GET /notifications, GET /notifications/unread, POST /notifications/read:
//     the caller's inbox. Viewing the inbox marks it read.
//   - GET|POST /admin/users, PUT|DELETE /admin/users/{id},
//     POST /admin/users/{id}/reset-password: team leader administration.
package http
