package services

import apperrors "tally/internal/errors"

func dbError(err error) error {
	return apperrors.FromStore(err)
}
