package alerts

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListNotifications returns current user's notifications, newest first
func ListNotifications(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	items := UserInbox().List(userID)
	if items == nil {
		items = []Notification{}
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": items})
}

// MarkNotificationRead marks specific notification as read
func MarkNotificationRead(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	nid := c.Param("id")
	if nid == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing notification id"})
	}

	if !UserInbox().MarkRead(userID, nid) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "notification not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}
