package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jwalitptl/dental-admin/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the operator identity and the capabilities the scheduling
// screens are allowed to exercise.
type Claims struct {
	ClinicID              string `json:"clinic_id"`
	CanManageAppointments bool   `json:"can_manage_appointments"`
	CanAssignStaff        bool   `json:"can_assign_staff"`
	jwt.RegisteredClaims
}

type JWTService interface {
	GenerateAccessToken(actor model.Actor) (string, error)
	ValidateToken(token string) (model.Actor, error)
}

type jwtService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTService(secret, issuer string, ttl time.Duration) JWTService {
	return &jwtService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *jwtService) GenerateAccessToken(actor model.Actor) (string, error) {
	now := s.now()
	claims := Claims{
		ClinicID:              actor.ClinicID.String(),
		CanManageAppointments: actor.CanManageAppointments,
		CanAssignStaff:        actor.CanAssignStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.StaffID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *jwtService) ValidateToken(raw string) (model.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	staffID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	clinicID, err := uuid.Parse(claims.ClinicID)
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: bad clinic_id", ErrInvalidToken)
	}

	return model.Actor{
		StaffID:  staffID,
		ClinicID: clinicID,
		Capabilities: model.Capabilities{
			CanManageAppointments: claims.CanManageAppointments,
			CanAssignStaff:        claims.CanAssignStaff,
		},
	}, nil
}
