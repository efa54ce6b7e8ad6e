package accountdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-petr/account-bank/internal/domain"
	"github.com/go-petr/account-bank/pkg/errorspkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("accounttype", ValidAccountType); err != nil {
			panic(err)
		}
	}

	os.Exit(m.Run())
}

func score(v int64) *int64 {
	return &v
}

func testAccount(number int64, accountType domain.AccountType, balance string, bonusScore *int64) domain.Account {
	return domain.Account{
		ID:         number,
		Number:     number,
		Balance:    balance,
		Type:       accountType,
		BonusScore: bonusScore,
		CreatedAt:  time.Now().Truncate(time.Second).UTC(),
	}
}

func setupRouter(h Handler) *gin.Engine {
	router := gin.New()

	router.POST("/accounts", h.Create)
	router.GET("/accounts/:number", h.Get)
	router.POST("/accounts/:number/debit", h.Debit)
	router.POST("/accounts/:number/credit", h.Credit)
	router.POST("/accounts/:number/interest", h.YieldInterest)
	router.POST("/interest", h.YieldInterestAll)

	return router
}

type accountResponse struct {
	Data struct {
		Account domain.Account `json:"account"`
	} `json:"data"`
	Error string `json:"error"`
}

func decodeAccountResponse(t *testing.T, recorder *httptest.ResponseRecorder) accountResponse {
	t.Helper()

	var res accountResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &res); err != nil {
		t.Fatalf("json.Unmarshal(%v) returned error: %v", recorder.Body.String(), err)
	}

	return res
}

func requireAccount(t *testing.T, want, got domain.Account) {
	t.Helper()

	compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
	if diff := cmp.Diff(want, got, compareCreatedAt); diff != "" {
		t.Errorf("account mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateAPI(t *testing.T) {
	savingAccount := testAccount(1236757, domain.Saving, "1000", nil)
	bonusAccount := testAccount(1230390, domain.Bonus, "1000", score(10))

	testCases := []struct {
		name           string
		requestBody    gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
		wantAccount    *domain.Account
	}{
		{
			name: "OKSaving",
			requestBody: gin.H{
				"number":  savingAccount.Number,
				"type":    "Saving",
				"balance": "1000",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(savingAccount.Number), gomock.Eq(domain.Saving), gomock.Eq("1000")).
					Times(1).
					Return(savingAccount, nil)
			},
			wantStatusCode: http.StatusOK,
			wantAccount:    &savingAccount,
		},
		{
			name: "OKBonus",
			requestBody: gin.H{
				"number":  bonusAccount.Number,
				"type":    "Bonus",
				"balance": "1000",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(bonusAccount.Number), gomock.Eq(domain.Bonus), gomock.Eq("1000")).
					Times(1).
					Return(bonusAccount, nil)
			},
			wantStatusCode: http.StatusOK,
			wantAccount:    &bonusAccount,
		},
		{
			name: "AlreadyExists",
			requestBody: gin.H{
				"number":  savingAccount.Number,
				"type":    "Saving",
				"balance": "1000",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountAlreadyExists)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrAccountAlreadyExists.Error(),
		},
		{
			name: "InitialBalanceRequired",
			requestBody: gin.H{
				"number":  savingAccount.Number,
				"type":    "Saving",
				"balance": "0",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrInitialBalanceRequired)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInitialBalanceRequired.Error(),
		},
		{
			name: "UnsupportedType",
			requestBody: gin.H{
				"number":  savingAccount.Number,
				"type":    "Checking",
				"balance": "1000",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Type is not supported",
		},
		{
			name: "MissingBalance",
			requestBody: gin.H{
				"number": savingAccount.Number,
				"type":   "Saving",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Balance is required",
		},
		{
			name: "InternalError",
			requestBody: gin.H{
				"number":  savingAccount.Number,
				"type":    "Saving",
				"balance": "1000",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := setupRouter(NewHandler(service))

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("json.Marshal(%v) returned error: %v", tc.requestBody, err)
			}

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))

			router.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("status code = %v, want %v, body: %v", recorder.Code, tc.wantStatusCode, recorder.Body.String())
			}

			res := decodeAccountResponse(t, recorder)

			if tc.wantError != "" && res.Error != tc.wantError {
				t.Errorf("error = %q, want %q", res.Error, tc.wantError)
			}

			if tc.wantAccount != nil {
				requireAccount(t, *tc.wantAccount, res.Data.Account)
			}
		})
	}
}

func TestGetAPI(t *testing.T) {
	account := testAccount(1236757, domain.Saving, "1000", nil)

	testCases := []struct {
		name           string
		number         string
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
		wantAccount    *domain.Account
	}{
		{
			name:   "OK",
			number: fmt.Sprintf("%d", account.Number),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			wantAccount:    &account,
		},
		{
			name:   "NotFound",
			number: "404404",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(int64(404404))).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name:   "InvalidNumber",
			number: "0",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := setupRouter(NewHandler(service))

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/accounts/"+tc.number, nil)

			router.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("status code = %v, want %v, body: %v", recorder.Code, tc.wantStatusCode, recorder.Body.String())
			}

			res := decodeAccountResponse(t, recorder)

			if tc.wantError != "" && res.Error != tc.wantError {
				t.Errorf("error = %q, want %q", res.Error, tc.wantError)
			}

			if tc.wantAccount != nil {
				requireAccount(t, *tc.wantAccount, res.Data.Account)
			}
		})
	}
}

func TestDebitAPI(t *testing.T) {
	account := testAccount(1236757, domain.Default, "900", nil)

	testCases := []struct {
		name           string
		number         string
		requestBody    gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
		wantAccount    *domain.Account
	}{
		{
			name:        "OK",
			number:      fmt.Sprintf("%d", account.Number),
			requestBody: gin.H{"amount": "100"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Eq(account.Number), gomock.Eq("100")).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			wantAccount:    &account,
		},
		{
			name:        "InsufficientBalance",
			number:      fmt.Sprintf("%d", account.Number),
			requestBody: gin.H{"amount": "10000"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Eq(account.Number), gomock.Eq("10000")).
					Times(1).
					Return(domain.Account{}, domain.ErrInsufficientBalance)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInsufficientBalance.Error(),
		},
		{
			name:        "NotFound",
			number:      "404404",
			requestBody: gin.H{"amount": "100"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Eq(int64(404404)), gomock.Eq("100")).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name:        "MissingAmount",
			number:      fmt.Sprintf("%d", account.Number),
			requestBody: gin.H{},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount is required",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := setupRouter(NewHandler(service))

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("json.Marshal(%v) returned error: %v", tc.requestBody, err)
			}

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/accounts/"+tc.number+"/debit", bytes.NewReader(body))

			router.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("status code = %v, want %v, body: %v", recorder.Code, tc.wantStatusCode, recorder.Body.String())
			}

			res := decodeAccountResponse(t, recorder)

			if tc.wantError != "" && res.Error != tc.wantError {
				t.Errorf("error = %q, want %q", res.Error, tc.wantError)
			}

			if tc.wantAccount != nil {
				requireAccount(t, *tc.wantAccount, res.Data.Account)
			}
		})
	}
}

func TestCreditAPI(t *testing.T) {
	bonusAccount := testAccount(1230390, domain.Bonus, "1500", score(10))

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	service.EXPECT().
		Credit(gomock.Any(), gomock.Eq(bonusAccount.Number), gomock.Eq("500")).
		Times(1).
		Return(bonusAccount, nil)

	router := setupRouter(NewHandler(service))

	body, err := json.Marshal(gin.H{"amount": "500"})
	if err != nil {
		t.Fatalf("json.Marshal returned error: %v", err)
	}

	recorder := httptest.NewRecorder()
	url := fmt.Sprintf("/accounts/%d/credit", bonusAccount.Number)
	request := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))

	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("status code = %v, want %v, body: %v", recorder.Code, http.StatusOK, recorder.Body.String())
	}

	res := decodeAccountResponse(t, recorder)
	requireAccount(t, bonusAccount, res.Data.Account)
}

func TestYieldInterestAPI(t *testing.T) {
	account := testAccount(1236757, domain.Saving, "525", nil)

	testCases := []struct {
		name           string
		number         string
		requestBody    gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
		wantAccount    *domain.Account
	}{
		{
			name:        "OK",
			number:      fmt.Sprintf("%d", account.Number),
			requestBody: gin.H{"rate": "5"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					YieldInterestByAccount(gomock.Any(), gomock.Eq(account.Number), gomock.Eq("5")).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			wantAccount:    &account,
		},
		{
			name:        "InvalidRate",
			number:      fmt.Sprintf("%d", account.Number),
			requestBody: gin.H{"rate": "five"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					YieldInterestByAccount(gomock.Any(), gomock.Eq(account.Number), gomock.Eq("five")).
					Times(1).
					Return(domain.Account{}, domain.ErrInvalidInterestRate)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidInterestRate.Error(),
		},
		{
			name:        "NotFound",
			number:      "404404",
			requestBody: gin.H{"rate": "5"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					YieldInterestByAccount(gomock.Any(), gomock.Eq(int64(404404)), gomock.Eq("5")).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := setupRouter(NewHandler(service))

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("json.Marshal(%v) returned error: %v", tc.requestBody, err)
			}

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/accounts/"+tc.number+"/interest", bytes.NewReader(body))

			router.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("status code = %v, want %v, body: %v", recorder.Code, tc.wantStatusCode, recorder.Body.String())
			}

			res := decodeAccountResponse(t, recorder)

			if tc.wantError != "" && res.Error != tc.wantError {
				t.Errorf("error = %q, want %q", res.Error, tc.wantError)
			}

			if tc.wantAccount != nil {
				requireAccount(t, *tc.wantAccount, res.Data.Account)
			}
		})
	}
}

func TestYieldInterestAllAPI(t *testing.T) {
	saving1 := testAccount(1236757, domain.Saving, "551.25", nil)
	saving2 := testAccount(1236758, domain.Saving, "1050", nil)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	service.EXPECT().
		YieldInterest(gomock.Any(), gomock.Eq("5")).
		Times(1).
		Return([]domain.Account{saving1, saving2}, nil)

	router := setupRouter(NewHandler(service))

	body, err := json.Marshal(gin.H{"rate": "5"})
	if err != nil {
		t.Fatalf("json.Marshal returned error: %v", err)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/interest", bytes.NewReader(body))

	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("status code = %v, want %v, body: %v", recorder.Code, http.StatusOK, recorder.Body.String())
	}

	var res struct {
		Data struct {
			Accounts []domain.Account `json:"accounts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &res); err != nil {
		t.Fatalf("json.Unmarshal(%v) returned error: %v", recorder.Body.String(), err)
	}

	compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
	if diff := cmp.Diff([]domain.Account{saving1, saving2}, res.Data.Accounts, compareCreatedAt); diff != "" {
		t.Errorf("accounts mismatch (-want +got):\n%s", diff)
	}
}
