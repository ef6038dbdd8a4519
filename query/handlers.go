package query

import (
	"context"

	"github.com/goliatone/go-zaaknotify/core"
)

// ActivityPage is one page of a user's feed, newest first.
type ActivityPage struct {
	Items  []core.ActivityEntry
	Total  int
	Limit  int
	Offset int
}

type SubscriptionReader interface {
	List(ctx context.Context) ([]core.Subscription, error)
}

type APIGroupReader interface {
	List(ctx context.Context) ([]core.APIGroup, error)
}

type ListCaseActivityQuery struct {
	reader core.FeedReader
}

func NewListCaseActivityQuery(reader core.FeedReader) *ListCaseActivityQuery {
	return &ListCaseActivityQuery{reader: reader}
}

func (q *ListCaseActivityQuery) Query(ctx context.Context, msg ListCaseActivityMessage) (ActivityPage, error) {
	if q == nil || q.reader == nil {
		return ActivityPage{}, queryDependencyError("query: feed reader is required")
	}
	limit := msg.Limit
	if limit <= 0 {
		limit = 25
	}
	items, total, err := q.reader.ListByUser(ctx, msg.UserID, limit, msg.Offset)
	if err != nil {
		return ActivityPage{}, err
	}
	return ActivityPage{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: msg.Offset,
	}, nil
}

type ListSubscriptionsQuery struct {
	reader SubscriptionReader
}

func NewListSubscriptionsQuery(reader SubscriptionReader) *ListSubscriptionsQuery {
	return &ListSubscriptionsQuery{reader: reader}
}

func (q *ListSubscriptionsQuery) Query(ctx context.Context, _ ListSubscriptionsMessage) ([]core.Subscription, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: subscription reader is required")
	}
	return q.reader.List(ctx)
}

type ListAPIGroupsQuery struct {
	reader APIGroupReader
}

func NewListAPIGroupsQuery(reader APIGroupReader) *ListAPIGroupsQuery {
	return &ListAPIGroupsQuery{reader: reader}
}

func (q *ListAPIGroupsQuery) Query(ctx context.Context, _ ListAPIGroupsMessage) ([]core.APIGroup, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: api group reader is required")
	}
	return q.reader.List(ctx)
}
