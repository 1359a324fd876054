package services

import "context"

type notificationsState interface {
	Notifications() []string
	DismissNotification(index int) error
}

type notificationsService struct {
	state notificationsState
}

func NewNotificationsService(state notificationsState) *notificationsService {
	return &notificationsService{state: state}
}

func (s *notificationsService) List(ctx context.Context) []string {
	return s.state.Notifications()
}

func (s *notificationsService) Dismiss(ctx context.Context, index int) error {
	return s.state.DismissNotification(index)
}
