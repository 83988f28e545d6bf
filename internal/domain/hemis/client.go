// Package hemis клиент REST API HEMIS (student.tma.uz).
// Авторизация студента выполняется его собственными учётными данными,
// полученный bearer-токен используется для остальных запросов.
package hemis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrInvalidCredentials HEMIS отклонил логин или пароль
var ErrInvalidCredentials = errors.New("hemis rejected credentials")

// Client клиент HEMIS API
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient создает новый экземпляр Client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Named справочное значение HEMIS: код и название
type Named struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Account профиль студента из account/me
type Account struct {
	StudentIDNumber string  `json:"student_id_number"`
	FullName        string  `json:"full_name"`
	ShortName       string  `json:"short_name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Image           *string `json:"image"`
	BirthDate       int64   `json:"birth_date"` // unix seconds
	Address         string  `json:"address"`
	University      string  `json:"university"`
	Gender          Named   `json:"gender"`
	Faculty         struct {
		ID   *int    `json:"id"`
		Name string  `json:"name"`
		Code *string `json:"code"`
	} `json:"faculty"`
	Group struct {
		Name string `json:"name"`
	} `json:"group"`
	Level Named `json:"level"`
}

// GPAEntry запись education/gpa-list
type GPAEntry struct {
	EducationYear Named   `json:"educationYear"`
	Level         Named   `json:"level"`
	GPA           string  `json:"gpa"`
	CreditSum     float64 `json:"credit_sum"`
	Subjects      int     `json:"subjects"`
	DebtSubjects  int     `json:"debt_subjects"`
	CanTransfer   bool    `json:"can_transfer"`
	Method        string  `json:"method"`
}

// Contract договор студента из student/contract
type Contract struct {
	ContractNumber string   `json:"contract_number"`
	ContractDate   string   `json:"contract_date"`
	EduSpeciality  string   `json:"edu_speciality"`
	EduYear        string   `json:"edu_year"`
	EduForm        string   `json:"edu_form"`
	ContractType   string   `json:"contract_type"`
	PDFLink        string   `json:"pdf_link"`
	ContractSum    int64    `json:"contract_sum"`
	GPA            *float64 `json:"gpa"`
	Debit          *int64   `json:"debit"`
	Credit         *int64   `json:"credit"`
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Login авторизует студента и возвращает bearer-токен
func (c *Client) Login(ctx context.Context, login, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"login": login, "password": password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call hemis login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrInvalidCredentials
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if !env.Success {
		return "", ErrInvalidCredentials
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("failed to decode login token: %w", err)
	}
	return data.Token, nil
}

// Me получает профиль студента
func (c *Client) Me(ctx context.Context, token string) (*Account, error) {
	var account Account
	if err := c.get(ctx, token, "/account/me", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GPAList получает записи GPA по учебным годам
func (c *Client) GPAList(ctx context.Context, token string) ([]GPAEntry, error) {
	var entries []GPAEntry
	if err := c.get(ctx, token, "/education/gpa-list", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Contract получает сведения о договоре студента
func (c *Client) Contract(ctx context.Context, token string) (*Contract, error) {
	var contract Contract
	if err := c.get(ctx, token, "/student/contract", &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (c *Client) get(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call hemis %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hemis %s returned status %d", path, resp.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode hemis %s response: %w", path, err)
	}
	if !env.Success {
		return fmt.Errorf("hemis %s returned error: %s", path, env.Error)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode hemis %s data: %w", path, err)
	}
	return nil
}
