package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kotonoha-dev/booking_api/internal/model"
	"go.uber.org/zap"
)

// Client клиент Google Calendar API v3.
// Чтение занятых интервалов никогда не возвращает ошибку наружу:
// при любом сбое список пуст и ядро продолжает работать без календаря.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	calendarID  string
	accessToken string
	loc         *time.Location
	logger      *zap.Logger
}

func NewClient(baseURL, calendarID, accessToken string, loc *time.Location, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     baseURL,
		calendarID:  calendarID,
		accessToken: accessToken,
		loc:         loc,
		logger:      logger,
	}
}

// NewClientWithHTTP создаёт клиент с кастомным HTTP-клиентом (для тестов)
func NewClientWithHTTP(httpClient *http.Client, baseURL, calendarID, accessToken string, loc *time.Location, logger *zap.Logger) *Client {
	c := NewClient(baseURL, calendarID, accessToken, loc, logger)
	c.httpClient = httpClient
	return c
}

// eventTime начало или конец события: либо dateTime, либо date (весь день)
type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

type event struct {
	ID      string    `json:"id,omitempty"`
	Summary string    `json:"summary,omitempty"`
	Status  string    `json:"status,omitempty"`
	Start   eventTime `json:"start"`
	End     eventTime `json:"end"`
}

type eventList struct {
	Items []event `json:"items"`
}

// FetchBusy возвращает занятые интервалы календаря на дату.
// Событие с date вместо dateTime трактуется как занятость на весь день.
func (c *Client) FetchBusy(ctx context.Context, date time.Time) []model.BusyInterval {
	dayStart := date
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := url.Values{}
	query.Set("timeMin", dayStart.Format(time.RFC3339))
	query.Set("timeMax", dayEnd.Format(time.RFC3339))
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, url.PathEscape(c.calendarID), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("Calendar request build failed", zap.Error(err))
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Calendar fetch failed, ignoring external calendar", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Calendar fetch returned non-OK status, ignoring external calendar",
			zap.Int("status", resp.StatusCode))
		return nil
	}

	var list eventList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		c.logger.Warn("Calendar response parse failed, ignoring external calendar", zap.Error(err))
		return nil
	}

	var busy []model.BusyInterval
	for _, item := range list.Items {
		if item.Status == "cancelled" {
			continue
		}

		if item.Start.Date != "" {
			busy = append(busy, model.BusyInterval{AllDay: true})
			continue
		}

		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			continue
		}

		busy = append(busy, model.BusyInterval{Start: start, End: end})
	}

	return busy
}

// InsertEvent создаёт зеркальное событие бронирования, возвращает его ID
func (c *Client) InsertEvent(ctx context.Context, summary string, date time.Time, start, end string) (string, error) {
	startAt, err := c.atTime(date, start)
	if err != nil {
		return "", err
	}
	endAt, err := c.atTime(date, end)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(event{
		Summary: summary,
		Start:   eventTime{DateTime: startAt.Format(time.RFC3339)},
		End:     eventTime{DateTime: endAt.Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(c.calendarID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build insert request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("insert event: status %d", resp.StatusCode)
	}

	var created event
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode created event: %w", err)
	}

	return created.ID, nil
}

// DeleteEvent удаляет зеркальное событие. Уже удалённое событие не ошибка.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s", c.baseURL, url.PathEscape(c.calendarID), url.PathEscape(eventID))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound, http.StatusGone:
		return nil
	default:
		return fmt.Errorf("delete event: status %d", resp.StatusCode)
	}
}

func (c *Client) atTime(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", hhmm, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, c.loc), nil
}
