package view

import (
	"freequilt/internal/app/directory"
	"freequilt/internal/app/notify"
)

// Notices shown by the sign-in flows.
var (
	NoticeLoggedIn   = notify.Notification{Kind: notify.KindSuccess, Message: "Login successful! Redirecting..."}
	NoticeRegistered = notify.Notification{Kind: notify.KindSuccess, Message: "Account created successfully! Redirecting..."}
	NoticeLoggedOut  = notify.Notification{Kind: notify.KindSuccess, Message: "Logged out successfully"}
)

// FavoriteNotice returns the notification for a favorite toggle, if any.
func FavoriteNotice(result directory.FavoriteResult) (notify.Notification, bool) {
	switch result {
	case directory.FavoriteAdded:
		return notify.Notification{Kind: notify.KindSuccess, Message: "Added to favorites!"}, true
	case directory.FavoriteAlreadyPresent:
		return notify.Notification{Kind: notify.KindInfo, Message: "Already in favorites"}, true
	case directory.FavoriteRemoved:
		return notify.Notification{Kind: notify.KindSuccess, Message: "Removed from favorites"}, true
	}
	return notify.Notification{}, false
}
