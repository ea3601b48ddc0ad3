package api

import (
	"fmt"      // Error messages
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"finance_tracker/internal/domain"     // Importing domain models
	"finance_tracker/internal/middleware" // Authenticated principal
	"finance_tracker/internal/service"    // Ledger use cases

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Fixed-point money
)

// TransactionRequest is the body of create and update
type TransactionRequest struct {
	IsIncome bool             `json:"isIncome"`                    // Income or expense
	Date     string           `json:"date" binding:"required"`     // ISO-8601 local date-time
	Amount   *decimal.Decimal `json:"amount" binding:"required"`   // Non-negative magnitude
	Category string           `json:"category" binding:"required"` // Free-form label
}

func (r TransactionRequest) input() (domain.TransactionInput, error) {
	date, err := domain.ParseDateTime(r.Date)
	if err != nil {
		return domain.TransactionInput{}, err
	}
	return domain.TransactionInput{IsIncome: r.IsIncome, Date: date, Amount: *r.Amount, Category: r.Category}, nil
}

// bindTransaction parses the request body, writing a 400 on failure
func bindTransaction(c *gin.Context) (domain.TransactionInput, bool) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "date, amount and category are required")
		return domain.TransactionInput{}, false
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, "Invalid date "+strconv.Quote(req.Date))
		return domain.TransactionInput{}, false
	}
	return in, true
}

// parseID reads the :id path parameter, writing a 400 on failure
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid transaction id")
		return 0, false
	}
	return uint(id), true
}

// CreateTransactionHandler records a transaction for the caller
func CreateTransactionHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			respondStatus(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		in, ok := bindTransaction(c)
		if !ok {
			return
		}
		t, err := ledger.CreateTransaction(c.Request.Context(), p, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// UpdateTransactionHandler replaces the fields of one of the caller's transactions
func UpdateTransactionHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			respondStatus(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		id, ok := parseID(c)
		if !ok {
			return
		}
		in, ok := bindTransaction(c)
		if !ok {
			return
		}
		t, err := ledger.UpdateTransaction(c.Request.Context(), p, id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// DeleteTransactionHandler removes one of the caller's transactions
func DeleteTransactionHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			respondStatus(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		id, ok := parseID(c)
		if !ok {
			return
		}
		deleted, err := ledger.DeleteTransaction(c.Request.Context(), p, id)
		if err != nil {
			respondError(c, err)
			return
		}
		if !deleted {
			respondStatus(c, http.StatusNotFound, "Transaction not found")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GetTransactionHandler returns any transaction by id
func GetTransactionHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		t, err := ledger.GetTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// ListTransactionsHandler returns a filtered, sorted page of transactions
func ListTransactionsHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseFilter(c)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
		if err != nil {
			badRequest(c, "page must be an integer")
			return
		}
		size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(domain.DefaultPageSize)))
		if err != nil {
			badRequest(c, "size must be an integer")
			return
		}
		sortBy := c.DefaultQuery("sortBy", string(domain.SortByDate))
		sortDir := c.DefaultQuery("sortDirection", "desc")

		result, err := ledger.ListTransactions(c.Request.Context(), filter, page, size, sortBy, sortDir)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// parseFilter reads the optional filter query parameters
func parseFilter(c *gin.Context) (domain.TransactionFilter, error) {
	var f domain.TransactionFilter
	if v, ok := c.GetQuery("isIncome"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("isIncome must be true or false")
		}
		f.IsIncome = &b
	}
	if v, ok := c.GetQuery("startDate"); ok {
		t, err := domain.ParseDateTime(v)
		if err != nil {
			return f, fmt.Errorf("invalid startDate %q", v)
		}
		f.StartDate = &t
	}
	if v, ok := c.GetQuery("endDate"); ok {
		t, err := domain.ParseDateTime(v)
		if err != nil {
			return f, fmt.Errorf("invalid endDate %q", v)
		}
		f.EndDate = &t
	}
	if v, ok := c.GetQuery("minAmount"); ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("invalid minAmount %q", v)
		}
		f.MinAmount = &d
	}
	if v, ok := c.GetQuery("maxAmount"); ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("invalid maxAmount %q", v)
		}
		f.MaxAmount = &d
	}
	if v, ok := c.GetQuery("category"); ok {
		f.Category = &v
	}
	return f, nil
}
