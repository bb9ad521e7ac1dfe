package service_test

import (
	"context"
	"errors"
	"marketplace/config"
	otelMocks "marketplace/infras/otel/mocks"
	pgMocks "marketplace/infras/postgres/mocks"
	"marketplace/internal/domains/auction/mocks"
	"marketplace/internal/domains/auction/model"
	"marketplace/internal/domains/auction/model/dto"
	"marketplace/internal/domains/auction/service"
	svcMocks "marketplace/internal/domains/auction/service/mocks"
	bookingDto "marketplace/internal/domains/booking/model/dto"
	userMocks "marketplace/internal/domains/user/mocks"
	userModel "marketplace/internal/domains/user/model"
	relayMocks "marketplace/internal/relay/mocks"
	cacheMocks "marketplace/shared/cache/mocks"
	"marketplace/shared/constant"
	gDto "marketplace/shared/dto"
	"marketplace/shared/failure"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	auctionID = "a-1"
	creatorID = "c-1"
)

type deps struct {
	repo     *mocks.MockAuction
	bidRepo  *mocks.MockBid
	userRepo *userMocks.MockUser
	bookings *svcMocks.MockBookingCreator
	cache    *cacheMocks.MockRedisCache
	svc      service.Auction
}

func newDeps(t *testing.T) *deps {
	t.Helper()

	ctrl := gomock.NewController(t)

	d := &deps{
		repo:     mocks.NewMockAuction(ctrl),
		bidRepo:  mocks.NewMockBid(ctrl),
		userRepo: userMocks.NewMockUser(ctrl),
		bookings: svcMocks.NewMockBookingCreator(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
	}

	tx := pgMocks.NewMockTransactor(ctrl)
	tx.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(*sqlx.Tx) error) error { return fn(nil) }).
		AnyTimes()

	publisher := relayMocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	cfg.Auction.ServiceFeeRate = 0.10
	cfg.Auction.MinBidderRating = 3.5

	d.svc = service.New(d.repo, d.bidRepo, d.userRepo, d.bookings, tx, publisher, cfg, d.cache, otelMocks.NewOtel())

	return d
}

func as(userID string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, userID)
}

func openAuction() model.Auction {
	return model.Auction{
		ID:           auctionID,
		CreatorID:    creatorID,
		Title:        "Paint the living room",
		InitialPrice: 100,
		Status:       model.StatusActive,
		EndDate:      time.Now().Add(24 * time.Hour),
	}
}

func professional(id string, rating float64) userModel.User {
	return userModel.User{ID: id, Role: userModel.RoleProfessional, AverageRating: rating}
}

// bidBook tracks inserted bids so MaxAmountTx sees earlier bids.
type bidBook struct {
	mu   sync.Mutex
	bids []model.Bid
}

func (b *bidBook) insert(_ context.Context, _ *sqlx.Tx, bid model.Bid) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = append(b.bids, bid)

	return nil
}

func (b *bidBook) max(context.Context, *sqlx.Tx, string) (float64, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.bids) == 0 {
		return 0, false, nil
	}

	highest := b.bids[0].Amount
	for _, bid := range b.bids[1:] {
		highest = max(highest, bid.Amount)
	}

	return highest, true, nil
}

func TestPlaceBid_Sequence(t *testing.T) {
	d := newDeps(t)
	book := &bidBook{}

	d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(openAuction(), nil).AnyTimes()
	d.userRepo.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) (userModel.User, error) {
			id, _ := filter.Filters[0].(gDto.Filter).Value.(string)

			return professional(id, 4.2), nil
		}).AnyTimes()
	d.bidRepo.EXPECT().MaxAmountTx(gomock.Any(), gomock.Any(), auctionID).DoAndReturn(book.max).AnyTimes()
	d.bidRepo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(book.insert).AnyTimes()

	first, err := d.svc.PlaceBid(as("p-1"), auctionID, dto.PlaceBidRequest{Amount: 120})
	require.NoError(t, err)
	assert.InDelta(t, 12, first.ServiceFee, 1e-9)
	assert.InDelta(t, 132, first.TotalAmount, 1e-9)
	assert.Equal(t, model.BidStatusPending, first.Status)

	_, err = d.svc.PlaceBid(as("p-2"), auctionID, dto.PlaceBidRequest{Amount: 110})
	require.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindBidTooLow))

	_, err = d.svc.PlaceBid(as("p-2"), auctionID, dto.PlaceBidRequest{Amount: 120})
	assert.True(t, failure.IsKind(err, failure.KindBidTooLow), "a tie is not an outbid")

	second, err := d.svc.PlaceBid(as("p-2"), auctionID, dto.PlaceBidRequest{Amount: 150})
	require.NoError(t, err)
	assert.InDelta(t, 15, second.ServiceFee, 1e-9)
	assert.InDelta(t, 165, second.TotalAmount, 1e-9)

	assert.Len(t, book.bids, 2)
}

func TestPlaceBid_Rejections(t *testing.T) {
	closed := openAuction()
	closed.Status = model.StatusCompleted

	expired := openAuction()
	expired.EndDate = time.Now().Add(-time.Minute)

	tests := []struct {
		name    string
		bidder  string
		amount  float64
		auction model.Auction
		user    userModel.User
		highest float64
		hasBids bool
		kind    failure.Kind
	}{
		{name: "first bid below initial price", bidder: "p-1", amount: 99.99, auction: openAuction(), user: professional("p-1", 4), kind: failure.KindBidTooLow},
		{name: "rating below threshold", bidder: "p-1", amount: 150, auction: openAuction(), user: professional("p-1", 3.4), kind: failure.KindIneligibleBidder},
		{name: "creator bids on own auction", bidder: creatorID, amount: 150, auction: openAuction(), kind: failure.KindNotAuthorized},
		{name: "auction completed", bidder: "p-1", amount: 150, auction: closed, kind: failure.KindAlreadyClosed},
		{name: "auction past end date", bidder: "p-1", amount: 150, auction: expired, kind: failure.KindAlreadyClosed},
		{name: "auction missing", bidder: "p-1", amount: 150, auction: model.Auction{}, kind: failure.KindNotFound},
		{name: "unknown bidder", bidder: "p-1", amount: 150, auction: openAuction(), user: userModel.User{}, kind: failure.KindNotFound},
		{name: "equal to highest", bidder: "p-1", amount: 150, auction: openAuction(), user: professional("p-1", 5), highest: 150, hasBids: true, kind: failure.KindBidTooLow},
		{name: "non-positive amount", bidder: "p-1", amount: 0, kind: failure.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps(t)

			d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.auction, nil).MaxTimes(1)
			d.userRepo.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.user, nil).MaxTimes(1)
			d.bidRepo.EXPECT().MaxAmountTx(gomock.Any(), gomock.Any(), auctionID).Return(tt.highest, tt.hasBids, nil).MaxTimes(1)

			_, err := d.svc.PlaceBid(as(tt.bidder), auctionID, dto.PlaceBidRequest{Amount: tt.amount})

			require.Error(t, err)
			assert.Equal(t, tt.kind, failure.GetKind(err))
		})
	}
}

func TestPlaceBid_ClientsAreNotRatingGated(t *testing.T) {
	d := newDeps(t)

	d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(openAuction(), nil)
	d.userRepo.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(userModel.User{ID: "u-9", Role: userModel.RoleClient}, nil)
	d.bidRepo.EXPECT().MaxAmountTx(gomock.Any(), gomock.Any(), auctionID).Return(0.0, false, nil)
	d.bidRepo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := d.svc.PlaceBid(as("u-9"), auctionID, dto.PlaceBidRequest{Amount: 100})

	require.NoError(t, err)
}

func pendingBid(id, bidder string, amount float64) model.Bid {
	return model.Bid{ID: id, AuctionID: auctionID, BidderID: bidder, Amount: amount, ServiceFee: amount / 10, TotalAmount: amount * 1.1, Status: model.BidStatusPending}
}

func TestAcceptBid(t *testing.T) {
	d := newDeps(t)
	bid := pendingBid("bid-2", "p-2", 150)

	d.bidRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bid, nil)
	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(openAuction(), nil)
	d.repo.EXPECT().CompareAndSetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, mod map[string]any, _ gDto.FilterGroup) (bool, error) {
			assert.Equal(t, model.StatusCompleted, mod[model.FieldStatus])
			assert.Equal(t, "bid-2", mod[model.FieldWinningBidID])

			return true, nil
		})
	d.bidRepo.EXPECT().CompareAndSetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	d.bidRepo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), map[string]any{model.BidFieldStatus: model.BidStatusRejected}, gomock.Any()).Return(nil)
	d.bookings.EXPECT().CreateFromBidTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, req bookingDto.FromBid) (string, error) {
			assert.Equal(t, creatorID, req.ClientID)
			assert.Equal(t, "p-2", req.ProfessionalID)
			assert.Equal(t, auctionID, req.AuctionID)
			assert.InDelta(t, 165, req.Price, 1e-9)

			return "bk-1", nil
		})

	res, err := d.svc.AcceptBid(as(creatorID), "bid-2")

	require.NoError(t, err)
	assert.Equal(t, dto.AcceptBidResponse{AuctionID: auctionID, BidID: "bid-2", BookingID: "bk-1"}, res)
}

func TestAcceptBid_Rejections(t *testing.T) {
	closed := openAuction()
	closed.Status = model.StatusCancelled

	rejected := pendingBid("bid-1", "p-1", 120)
	rejected.Status = model.BidStatusRejected

	tests := []struct {
		name    string
		caller  string
		bid     model.Bid
		auction model.Auction
		kind    failure.Kind
	}{
		{name: "bid missing", caller: creatorID, bid: model.Bid{}, kind: failure.KindNotFound},
		{name: "not the creator", caller: "p-9", bid: pendingBid("bid-1", "p-1", 120), auction: openAuction(), kind: failure.KindNotAuthorized},
		{name: "auction closed", caller: creatorID, bid: pendingBid("bid-1", "p-1", 120), auction: closed, kind: failure.KindAlreadyClosed},
		{name: "bid not pending", caller: creatorID, bid: rejected, auction: openAuction(), kind: failure.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps(t)

			d.bidRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.bid, nil)
			d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.auction, nil).MaxTimes(1)

			_, err := d.svc.AcceptBid(as(tt.caller), tt.bid.ID)

			require.Error(t, err)
			assert.Equal(t, tt.kind, failure.GetKind(err))
		})
	}
}

func TestAcceptBid_ConcurrentSingleWinner(t *testing.T) {
	d := newDeps(t)

	var closed atomic.Bool

	var bookingsCreated atomic.Int32

	d.bidRepo.EXPECT().Get(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Bid, error) {
			id, _ := filter.Filters[0].(gDto.Filter).Value.(string)

			return pendingBid(id, "p-"+id, 150), nil
		}).Times(2)
	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(openAuction(), nil).Times(2)
	d.repo.EXPECT().CompareAndSetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *sqlx.Tx, map[string]any, gDto.FilterGroup) (bool, error) {
			return closed.CompareAndSwap(false, true), nil
		}).Times(2)
	d.bidRepo.EXPECT().CompareAndSetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(1)
	d.bidRepo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
	d.bookings.EXPECT().CreateFromBidTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *sqlx.Tx, bookingDto.FromBid) (string, error) {
			bookingsCreated.Add(1)

			return "bk-1", nil
		}).Times(1)

	var wg sync.WaitGroup

	errs := make([]error, 2)

	for i, id := range []string{"bid-1", "bid-2"} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = d.svc.AcceptBid(as(creatorID), id)
		}()
	}

	wg.Wait()

	var failed []error

	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}

	require.Len(t, failed, 1)
	assert.True(t, failure.IsKind(failed[0], failure.KindAlreadyClosed))
	assert.Equal(t, int32(1), bookingsCreated.Load())
}

func TestAcceptBid_BookingFailureRollsBack(t *testing.T) {
	d := newDeps(t)

	d.bidRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingBid("bid-1", "p-1", 120), nil)
	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(openAuction(), nil)
	d.repo.EXPECT().CompareAndSetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	d.bidRepo.EXPECT().CompareAndSetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	d.bidRepo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	d.bookings.EXPECT().CreateFromBidTx(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("insert failed"))

	res, err := d.svc.AcceptBid(as(creatorID), "bid-1")

	require.Error(t, err)
	assert.Empty(t, res.BookingID)
}

func TestCancel(t *testing.T) {
	t.Run("creator cancels", func(t *testing.T) {
		d := newDeps(t)

		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(openAuction(), nil)
		d.repo.EXPECT().CompareAndSetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		d.bidRepo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), map[string]any{model.BidFieldStatus: model.BidStatusRejected}, gomock.Any()).Return(nil)

		require.NoError(t, d.svc.Cancel(as(creatorID), auctionID))
	})

	t.Run("stranger", func(t *testing.T) {
		d := newDeps(t)

		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(openAuction(), nil)

		err := d.svc.Cancel(as("p-1"), auctionID)
		assert.True(t, failure.IsKind(err, failure.KindNotAuthorized))
	})

	t.Run("already closed", func(t *testing.T) {
		d := newDeps(t)

		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(openAuction(), nil)
		d.repo.EXPECT().CompareAndSetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

		err := d.svc.Cancel(as(creatorID), auctionID)
		assert.True(t, failure.IsKind(err, failure.KindAlreadyClosed))
	})
}

func TestCreate(t *testing.T) {
	d := newDeps(t)

	d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, mod model.Auction) error {
			assert.Equal(t, creatorID, mod.CreatorID)
			assert.Equal(t, model.StatusActive, mod.Status)

			return nil
		})

	res, err := d.svc.Create(as(creatorID), dto.CreateAuctionRequest{
		Title:        "Fix the roof",
		Description:  "Two broken tiles",
		Category:     "repairs",
		InitialPrice: 100,
		EndDate:      time.Now().Add(time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, res.Status)

	_, err = d.svc.Create(as(creatorID), dto.CreateAuctionRequest{EndDate: time.Now().Add(-time.Hour)})
	assert.True(t, failure.IsKind(err, failure.KindValidation))
}

func TestListBids(t *testing.T) {
	d := newDeps(t)

	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(openAuction(), nil)
	d.bidRepo.EXPECT().GetAll(gomock.Any(), gDto.QueryParams{SortBy: model.BidFieldAmount, SortDir: gDto.SortDirAsc}, gomock.Any()).
		Return([]model.Bid{pendingBid("bid-1", "p-1", 120), pendingBid("bid-2", "p-2", 150)}, nil)

	res, err := d.svc.ListBids(as(creatorID), auctionID)

	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "bid-1", res[0].ID)
}

func TestGet_CacheHit(t *testing.T) {
	d := newDeps(t)

	d.cache.EXPECT().Get(gomock.Any(), "auction:"+auctionID, gomock.Any()).Return(nil)

	_, err := d.svc.Get(as(creatorID), auctionID)

	require.NoError(t, err)
}
