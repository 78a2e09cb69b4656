package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

func (a *API) Notifications(ctx context.Context) ([]Notification, error) {
	var page Page[Notification]
	if err := a.client.Get(ctx, "student/notifications/", nil, &page); err != nil {
		return nil, fmt.Errorf("[API Notifications] %w", err)
	}
	return page.Results, nil
}

func (a *API) MarkNotificationRead(ctx context.Context, id int64) error {
	if err := a.client.Post(ctx, "student/notifications/mark_read/", map[string]int64{"id": id}, nil); err != nil {
		return fmt.Errorf("[API MarkNotificationRead] %w", err)
	}
	return nil
}

func (a *API) NotificationUnreadCount(ctx context.Context) (int, error) {
	return a.unreadCount(ctx, "student/notifications/unread_count/")
}

func (a *API) Conversations(ctx context.Context) ([]Conversation, error) {
	var page Page[Conversation]
	if err := a.client.Get(ctx, "messages/conversations/", nil, &page); err != nil {
		return nil, fmt.Errorf("[API Conversations] %w", err)
	}
	return page.Results, nil
}

// Conversation returns one page of a conversation's messages. page and
// pageSize default to 1 and 50.
func (a *API) Conversation(ctx context.Context, id int64, page, pageSize int) (json.RawMessage, error) {
	p, err := idPath("messages/conversation/", id, "")
	if err != nil {
		return nil, fmt.Errorf("[API Conversation] %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	query := url.Values{"page": {strconv.Itoa(page)}, "page_size": {strconv.Itoa(pageSize)}}

	var out json.RawMessage
	if err := a.client.Get(ctx, p, query, &out); err != nil {
		return nil, fmt.Errorf("[API Conversation] %w", err)
	}
	return out, nil
}

func (a *API) SendMessage(ctx context.Context, conversationID int64, content string) (json.RawMessage, error) {
	var out json.RawMessage
	body := map[string]any{"conversation_id": conversationID, "content": content}
	if err := a.client.Post(ctx, "messages/send/", body, &out); err != nil {
		return nil, fmt.Errorf("[API SendMessage] %w", err)
	}
	return out, nil
}

// StartPrivateChat opens a one-to-one conversation. Teachers pass a student
// id, students a teacher id; zero ids are not sent.
func (a *API) StartPrivateChat(ctx context.Context, studentID, teacherID int64) (json.RawMessage, error) {
	body := map[string]int64{}
	if studentID > 0 {
		body["student_id"] = studentID
	}
	if teacherID > 0 {
		body["teacher_id"] = teacherID
	}
	var out json.RawMessage
	if err := a.client.Post(ctx, "messages/start_private/", body, &out); err != nil {
		return nil, fmt.Errorf("[API StartPrivateChat] %w", err)
	}
	return out, nil
}

func (a *API) BroadcastMessage(ctx context.Context, courseID int64, content string) (json.RawMessage, error) {
	var out json.RawMessage
	body := map[string]any{"course_id": courseID, "content": content}
	if err := a.client.Post(ctx, "messages/broadcast/", body, &out); err != nil {
		return nil, fmt.Errorf("[API BroadcastMessage] %w", err)
	}
	return out, nil
}

func (a *API) MessageUnreadCount(ctx context.Context) (int, error) {
	return a.unreadCount(ctx, "messages/unread_count/")
}

func (a *API) TeacherMessageUnreadCount(ctx context.Context) (int, error) {
	return a.unreadCount(ctx, "teacher/messages/unread_count/")
}

func (a *API) EnrolledStudents(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := a.client.Get(ctx, "teacher/messages/enrolled-students/", nil, &out); err != nil {
		return nil, fmt.Errorf("[API EnrolledStudents] %w", err)
	}
	return out, nil
}

func (a *API) MarkMessagesRead(ctx context.Context, conversationID int64) error {
	if err := a.client.Post(ctx, "messages/mark_read/", map[string]int64{"conversation_id": conversationID}, nil); err != nil {
		return fmt.Errorf("[API MarkMessagesRead] %w", err)
	}
	return nil
}

func (a *API) unreadCount(ctx context.Context, p string) (int, error) {
	var out struct {
		UnreadTotal int `json:"unread_total"`
	}
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return 0, fmt.Errorf("[API UnreadCount] %w", err)
	}
	return out.UnreadTotal, nil
}
