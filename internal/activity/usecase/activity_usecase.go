package usecase

import (
	replydomain "replydesk/internal/reply/domain"
	replyRepo "replydesk/internal/reply/repository"
)

const (
	dashboardLimit = 20
	recentLimit    = 10
)

// Dashboard bundles the aggregates rendered on the activity page.
type Dashboard struct {
	Activities []replydomain.EmailReply               `json:"activities"`
	Stats      replydomain.ActivityStats              `json:"stats"`
	Accounts   map[string]replydomain.AccountBreakdown `json:"accountStats"`
}

type ActivityUsecase interface {
	// Dashboard returns the recent sent/failed replies plus the user's
	// aggregate counters, optionally filtered to one account.
	Dashboard(userID, account string) (*Dashboard, error)
	// Recent returns the latest reply rows including in-flight ones,
	// for the live activity feed.
	Recent(userID, account string) ([]replydomain.EmailReply, error)
}

type activityUsecase struct {
	replyRepo replyRepo.EmailReplyRepository
}

func NewActivityUsecase(replyRepo replyRepo.EmailReplyRepository) ActivityUsecase {
	return &activityUsecase{replyRepo: replyRepo}
}

func (u *activityUsecase) Dashboard(userID, account string) (*Dashboard, error) {
	activities, err := u.replyRepo.RecentActivity(userID, account, dashboardLimit)
	if err != nil {
		return nil, err
	}

	stats, err := u.replyRepo.Stats(userID, account)
	if err != nil {
		return nil, err
	}

	accounts, err := u.replyRepo.AccountStats(userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Activities: activities,
		Stats:      stats,
		Accounts:   accounts,
	}, nil
}

func (u *activityUsecase) Recent(userID, account string) ([]replydomain.EmailReply, error) {
	return u.replyRepo.RecentUpdated(userID, account, recentLimit)
}
