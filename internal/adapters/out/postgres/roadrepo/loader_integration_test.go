package roadrepo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"routing/internal/adapters/out/postgres/roadrepo"
	"routing/internal/core/domain/model/roadnet"
	"routing/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// RoadNetworkLoaderIntegrationTestSuite verifies the read-only network
// loader against a real PostgreSQL container.
type RoadNetworkLoaderIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	loader    *roadrepo.GormRoadNetworkLoader
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&roadrepo.RoadDTO{},
		&roadrepo.RoadNodeDTO{},
		&roadrepo.RoadSegmentDTO{},
		&roadrepo.FeedbackDTO{},
		&roadrepo.TrafficConditionDTO{},
	))
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE roads, road_nodes, road_segments, segment_feedback, traffic_conditions").Error)
	suite.loader = roadrepo.NewGormRoadNetworkLoader(suite.db)
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) seedSegment(id int64) {
	suite.Require().NoError(suite.db.Create(&roadrepo.RoadSegmentDTO{
		ID:       id,
		RoadID:   1,
		Geometry: "-6.2000000,106.8000000;-6.2010000,106.8010000",
	}).Error)
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) loadAll() []roadnet.RoadSegment {
	var segments []roadnet.RoadSegment
	err := suite.loader.LoadSegments(context.Background(), func(batch []roadnet.RoadSegment) error {
		segments = append(segments, batch...)
		return nil
	})
	suite.Require().NoError(err)
	return segments
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) TestLoadRoads() {
	suite.Require().NoError(suite.db.Create(&roadrepo.RoadDTO{
		ID: 1, Name: "Sudirman", Type: "PRIMARY",
	}).Error)
	suite.Require().NoError(suite.db.Create(&roadrepo.RoadDTO{
		ID: 2, Name: "Thamrin", Type: "SECONDARY", OneWay: true,
	}).Error)

	roads, err := suite.loader.LoadRoads(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(roads, 2)
	suite.Equal("Sudirman", roads[0].Name)
	suite.True(roads[1].OneWay)
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) TestLoadNodes() {
	knownID := int64(42)
	suite.Require().NoError(suite.db.Create(&roadrepo.RoadNodeDTO{
		ID: 1, KnownID: &knownID, Lat: -6.2, Lon: 106.8,
	}).Error)
	suite.Require().NoError(suite.db.Create(&roadrepo.RoadNodeDTO{
		ID: 2, Lat: -6.21, Lon: 106.81,
	}).Error)

	nodes, err := suite.loader.LoadNodes(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(nodes, 2)
	suite.Require().NotNil(nodes[0].KnownID)
	suite.Equal(int64(42), *nodes[0].KnownID)
	suite.Nil(nodes[1].KnownID)
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) TestLoadSegments_EmptyNetworkIsAValidationError() {
	err := suite.loader.LoadSegments(context.Background(), func([]roadnet.RoadSegment) error {
		suite.FailNow("handler must not be called for an empty network")
		return nil
	})
	suite.Require().Error(err)
	suite.ErrorIs(err, errs.ErrValidation)
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) TestLoadSegments_FeedbackCappedToNewestTen() {
	suite.seedSegment(10)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		adjustment := float64(i) / 100
		suite.Require().NoError(suite.db.Create(&roadrepo.FeedbackDTO{
			SegmentID:  10,
			Adjustment: &adjustment,
			Severity:   "MINOR",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	segments := suite.loadAll()
	suite.Require().Len(segments, 1)
	suite.Require().Len(segments[0].Feedback, 10)
	for _, sample := range segments[0].Feedback {
		// the 5 oldest samples must have been cut
		suite.Require().NotNil(sample.Adjustment)
		suite.GreaterOrEqual(*sample.Adjustment, 0.05)
	}
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) TestLoadSegments_OnlyLatestUnexpiredTrafficCondition() {
	suite.seedSegment(10)
	now := time.Now().UTC()

	// expired
	suite.Require().NoError(suite.db.Create(&roadrepo.TrafficConditionDTO{
		SegmentID: 10, Level: "BLOCKED",
		CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}).Error)
	// older but live
	suite.Require().NoError(suite.db.Create(&roadrepo.TrafficConditionDTO{
		SegmentID: 10, Level: "CONGESTED",
		CreatedAt: now.Add(-30 * time.Minute), ExpiresAt: now.Add(time.Hour),
	}).Error)
	// newest live one wins
	suite.Require().NoError(suite.db.Create(&roadrepo.TrafficConditionDTO{
		SegmentID: 10, Level: "SLOW",
		CreatedAt: now.Add(-5 * time.Minute), ExpiresAt: now.Add(time.Hour),
	}).Error)

	segments := suite.loadAll()
	suite.Require().Len(segments, 1)
	suite.Require().NotNil(segments[0].Traffic)
	suite.Equal(roadnet.TrafficSlow, segments[0].Traffic.Level)
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) TestLoadSegments_NoConditionLeavesTrafficNil() {
	suite.seedSegment(10)

	segments := suite.loadAll()
	suite.Require().Len(segments, 1)
	suite.Nil(segments[0].Traffic)
	suite.Empty(segments[0].Feedback)
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) TestLoadSegments_OrderedByID() {
	for _, id := range []int64{30, 10, 20} {
		suite.seedSegment(id)
	}

	segments := suite.loadAll()
	suite.Require().Len(segments, 3)
	ids := make([]int64, 0, len(segments))
	for _, segment := range segments {
		ids = append(ids, segment.ID)
	}
	suite.Equal([]int64{10, 20, 30}, ids)
}

func (suite *RoadNetworkLoaderIntegrationTestSuite) TestLoadSegments_HandlerErrorStopsLoad() {
	for i := int64(1); i <= 3; i++ {
		suite.seedSegment(i)
	}

	wantErr := fmt.Errorf("downstream full")
	err := suite.loader.LoadSegments(context.Background(), func([]roadnet.RoadSegment) error {
		return wantErr
	})
	suite.Require().ErrorIs(err, wantErr)
}

func TestRoadNetworkLoaderIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RoadNetworkLoaderIntegrationTestSuite))
}
