package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"oifit/internal/domain/model"
	"oifit/internal/repository"
	"oifit/internal/validator"
)

type AddressUsecase struct {
	addresses repository.AddressRepository
}

func NewAddressUsecase(addresses repository.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID string) ([]model.Address, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errUnauthorized
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errDB
	}
	return list, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID string, form validator.AddressForm) (model.Address, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Address{}, errUnauthorized
	}

	//入力チェック
	if err := form.Validate(); err != nil {
		return model.Address{}, validationError(err)
	}
	f := form.Normalize()

	created, err := u.addresses.Create(ctx, model.Address{
		UserID:       userID,
		Street:       f.Street,
		Number:       f.Number,
		Complement:   f.Complement,
		Neighborhood: f.Neighborhood,
		City:         f.City,
		State:        f.State,
		ZipCode:      f.ZipCode,
		Country:      f.Country,
		CreatedAt:    now(),
	})
	if err != nil {
		return model.Address{}, errDB
	}
	return created, nil
}

// 存在しなければ404、他人の住所なら403
func (u *AddressUsecase) Delete(ctx context.Context, userID string, addressID int64) error {
	if strings.TrimSpace(userID) == "" {
		return errUnauthorized
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	a, err := u.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repository.ErrNotFound) {
		return errNotFound
	}
	if err != nil {
		return errDB
	}
	if a.UserID != userID {
		return errForbidden
	}

	if err := u.addresses.Delete(ctx, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNotFound
		}
		return errDB
	}
	return nil
}

// 注文時の住所（本人のものだけ）
func findOwnedAddress(ctx context.Context, addresses repository.AddressRepository, userID string, addressID int64) (model.Address, error) {
	a, err := addresses.FindByID(ctx, addressID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Address{}, errNotFound
	}
	if err != nil {
		return model.Address{}, errDB
	}
	if a.UserID != userID {
		return model.Address{}, errForbidden
	}
	return a, nil
}
