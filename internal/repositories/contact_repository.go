package repositories

import (
	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/sheet"
)

type SheetContactRepository struct {
	store sheet.Store
}

func NewSheetContactRepository(store sheet.Store) *SheetContactRepository {
	return &SheetContactRepository{store: store}
}

func (r *SheetContactRepository) GetByID(contactID string) (*models.TechContact, error) {
	rows, err := r.store.ReadRows(sheet.TableContacts)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Values["contact_id"] == contactID {
			return contactFromRow(row), nil
		}
	}
	return nil, nil
}

func (r *SheetContactRepository) GetByPhone(phone string) (*models.TechContact, error) {
	rows, err := r.store.ReadRows(sheet.TableContacts)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Values["phone_number"] == phone {
			return contactFromRow(row), nil
		}
	}
	return nil, nil
}

func (r *SheetContactRepository) List() ([]*models.TechContact, error) {
	rows, err := r.store.ReadRows(sheet.TableContacts)
	if err != nil {
		return nil, err
	}
	contacts := make([]*models.TechContact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, contactFromRow(row))
	}
	return contacts, nil
}

func contactFromRow(row sheet.Row) *models.TechContact {
	return &models.TechContact{
		RowIndex:    row.Index,
		ContactID:   row.Values["contact_id"],
		PhoneNumber: row.Values["phone_number"],
		DisplayName: row.Values["display_name"],
	}
}
