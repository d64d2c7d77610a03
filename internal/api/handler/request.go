package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-lodging-reservation/internal/api/middleware"
)

// callerID は X-User-ID ヘッダーから呼び出し元ユーザーを取得する
func callerID(c echo.Context) (string, error) {
	userID := strings.TrimSpace(c.Request().Header.Get(middleware.HeaderUserID))
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	return userID, nil
}

// pagination は limit と offset のクエリを読む。補正はサービス側で行う
func pagination(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

// bindAndValidate はリクエストボディを読み込んで検証する
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	return c.Validate(req)
}
