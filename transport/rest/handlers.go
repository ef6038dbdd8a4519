package rest

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-zaaknotify/query"
)

// maxNotificationBody bounds the webhook payload; real deliveries are a
// few hundred bytes.
const maxNotificationBody = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleNotification(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxNotificationBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unreadable body"})
	}

	result, err := s.processor.Process(
		c.Request().Context(),
		authorizationCredential(c.Request().Header.Get("Authorization")),
		body,
	)
	if err != nil {
		// The sender retries on 5xx; the audit trail already carries the cause.
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "processing failed"})
	}
	if result.StatusCode == http.StatusNoContent {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(result.StatusCode, errorResponse{Error: result.Reason})
}

func (s *Server) handleFeed(c echo.Context) error {
	msg := query.ListCaseActivityMessage{UserID: c.Param("user_id")}
	if limit := c.QueryParam("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit"})
		}
		msg.Limit = parsed
	}
	if offset := c.QueryParam("offset"); offset != "" {
		parsed, err := strconv.Atoi(offset)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid offset"})
		}
		msg.Offset = parsed
	}
	if err := msg.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	page, err := s.feed.Query(c.Request().Context(), msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "feed lookup failed"})
	}
	return c.JSON(http.StatusOK, feedResponse{
		Items:  feedItems(page),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

type feedResponse struct {
	Items  []feedItem `json:"items"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

type feedItem struct {
	ID                 string         `json:"id"`
	CaseURL            string         `json:"case_url"`
	CaseIdentification string         `json:"case_identification"`
	Channel            string         `json:"channel"`
	Action             string         `json:"action"`
	Title              string         `json:"title"`
	Metadata           map[string]any `json:"metadata"`
	CreatedAt          string         `json:"created_at"`
}

func feedItems(page query.ActivityPage) []feedItem {
	items := make([]feedItem, 0, len(page.Items))
	for _, entry := range page.Items {
		items = append(items, feedItem{
			ID:                 entry.ID,
			CaseURL:            entry.CaseURL,
			CaseIdentification: entry.CaseIdentification,
			Channel:            string(entry.Channel),
			Action:             entry.Action,
			Title:              entry.Title,
			Metadata:           entry.Metadata,
			CreatedAt:          entry.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return items
}

// authorizationCredential strips an optional Bearer prefix; the ZGW
// notificaties sender delivers client_id:secret either bare or wrapped.
func authorizationCredential(header string) string {
	header = strings.TrimSpace(header)
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return header
}
