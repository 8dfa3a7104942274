package attendance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EdwinEstrella/ironcore-gym/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CheckIn(ctx context.Context, gymID, memberID string) (*Attendance, error) {
	args := m.Called(ctx, gymID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Attendance), args.Error(1)
}

func (m *MockService) CheckOut(ctx context.Context, gymID, memberID string) (*Attendance, error) {
	args := m.Called(ctx, gymID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Attendance), args.Error(1)
}

func (m *MockService) Occupancy(ctx context.Context, gymID string) (*Occupancy, error) {
	args := m.Called(ctx, gymID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Occupancy), args.Error(1)
}

func (m *MockService) PeakHours(ctx context.Context, gymID string, days int) ([]HourCount, error) {
	args := m.Called(ctx, gymID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]HourCount), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("gym_id", "g-1")
		c.Next()
	})
	h := NewHandler(svc)
	r.POST("/api/attendance/check-in", h.CheckIn)
	r.POST("/api/attendance/check-out", h.CheckOut)
	r.GET("/api/attendance/occupancy", h.Occupancy)
	r.GET("/api/attendance/peak-hours", h.PeakHours)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, api.Result) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var res api.Result
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	return w, res
}

func TestHandler_CheckIn(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockService)
		wantStatus int
		wantMsg    string
	}{
		{
			name: "checked in",
			body: `{"member_id":"m-1"}`,
			setupMock: func(m *MockService) {
				m.On("CheckIn", mock.Anything, "g-1", "m-1").Return(&Attendance{ID: "a-1"}, nil)
			},
			wantStatus: http.StatusCreated,
			wantMsg:    "checked in",
		},
		{
			name:       "missing member",
			body:       `{}`,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "validation failed",
		},
		{
			name: "full",
			body: `{"member_id":"m-1"}`,
			setupMock: func(m *MockService) {
				m.On("CheckIn", mock.Anything, "g-1", "m-1").Return(nil, ErrGymFull)
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "gym is at full capacity",
		},
		{
			name: "unknown member",
			body: `{"member_id":"m-9"}`,
			setupMock: func(m *MockService) {
				m.On("CheckIn", mock.Anything, "g-1", "m-9").Return(nil, ErrMemberNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantMsg:    "member not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w, res := doRequest(setupRouter(svc), http.MethodPost, "/api/attendance/check-in", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, res.Message)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_CheckOutWithoutVisit(t *testing.T) {
	svc := new(MockService)
	svc.On("CheckOut", mock.Anything, "g-1", "m-1").Return(nil, ErrNotCheckedIn)

	w, res := doRequest(setupRouter(svc), http.MethodPost, "/api/attendance/check-out", `{"member_id":"m-1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "member is not checked in", res.Message)
}

func TestHandler_Occupancy(t *testing.T) {
	svc := new(MockService)
	svc.On("Occupancy", mock.Anything, "g-1").Return(&Occupancy{Current: 5, MaxCapacity: 10, Percentage: 50}, nil)

	w, res := doRequest(setupRouter(svc), http.MethodGet, "/api/attendance/occupancy", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := res.Data.(map[string]interface{})
	assert.Equal(t, float64(50), data["percentage"])
}

func TestHandler_PeakHours(t *testing.T) {
	t.Run("default window", func(t *testing.T) {
		svc := new(MockService)
		svc.On("PeakHours", mock.Anything, "g-1", DefaultPeakDays).Return(make([]HourCount, 24), nil)

		w, _ := doRequest(setupRouter(svc), http.MethodGet, "/api/attendance/peak-hours", "")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("explicit window", func(t *testing.T) {
		svc := new(MockService)
		svc.On("PeakHours", mock.Anything, "g-1", 30).Return(make([]HourCount, 24), nil)

		w, _ := doRequest(setupRouter(svc), http.MethodGet, "/api/attendance/peak-hours?days=30", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not a number", func(t *testing.T) {
		svc := new(MockService)

		w, res := doRequest(setupRouter(svc), http.MethodGet, "/api/attendance/peak-hours?days=week", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, ErrInvalidDays.Error(), res.Message)
	})
}
