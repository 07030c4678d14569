package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prior-it/directory/core"
	"github.com/prior-it/directory/directory"
)

type contacts struct {
	service *directory.Service
	prefix  string
	onError func(ctx context.Context, err error, status int)
}

type ContactModel struct {
	ID         uint   `json:"id"         readOnly:"true"`
	Name       string `json:"name"                       example:"Li Wei"`
	Phone      string `json:"phone"                      example:"13800000000"`
	Email      string `json:"email"                      example:"li.wei@example.com"`
	Address    string `json:"address"                    example:"1 Main Street"`
	Bookmarked bool   `json:"bookmarked"`
}

func newContactModel(contact *core.Contact) ContactModel {
	return ContactModel{
		ID:         uint(contact.ID),
		Name:       contact.Name,
		Phone:      contact.Phone,
		Email:      contact.Email,
		Address:    contact.Address,
		Bookmarked: contact.Bookmarked,
	}
}

func newContactModels(list []core.Contact) []ContactModel {
	models := make([]ContactModel, 0, len(list))
	for i := range list {
		models = append(models, newContactModel(&list[i]))
	}
	return models
}

type ContactCreateBody struct {
	Name       string `json:"name"                 doc:"Display name"`
	Phone      string `json:"phone"                doc:"One or more phone numbers"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"address,omitempty"`
	Bookmarked bool   `json:"bookmarked,omitempty"`
}

type ContactUpdateBody struct {
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Email      *string `json:"email,omitempty"`
	Address    *string `json:"address,omitempty"`
	Bookmarked *bool   `json:"bookmarked,omitempty"`
}

type ContactIDInput struct {
	ID uint `path:"id" minimum:"1" maximum:"2147483647" doc:"ID of the contact"`
}

type ContactOutput struct {
	Body ContactModel
}

type ContactListOutput struct {
	Body []ContactModel
}

type MessageOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

type BookmarkOutput struct {
	Body struct {
		Message string       `json:"message"`
		Contact ContactModel `json:"contact"`
	}
}

// handle converts errors returned by h into HTTP errors and logs them.
func handle[I, O any](
	h *contacts,
	handler func(context.Context, *I) (*O, error),
) func(context.Context, *I) (*O, error) {
	return func(ctx context.Context, input *I) (*O, error) {
		output, err := handler(ctx, input)
		if err != nil {
			statusErr := convertError(err)
			if h.onError != nil {
				h.onError(ctx, err, statusErr.GetStatus())
			}
			return nil, statusErr
		}
		return output, nil
	}
}

func (h *contacts) register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-contacts",
		Method:      http.MethodGet,
		Path:        h.prefix,
		Summary:     "List all contacts, bookmarked contacts first",
		Tags:        []string{"contacts"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, handle(h, h.list))

	huma.Register(api, huma.Operation{
		OperationID:   "add-contact",
		Method:        http.MethodPost,
		Path:          h.prefix,
		Summary:       "Add a contact",
		Tags:          []string{"contacts"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, handle(h, h.add))

	huma.Register(api, huma.Operation{
		OperationID: "search-contacts",
		Method:      http.MethodGet,
		Path:        h.prefix + "/search",
		Summary:     "Search contacts by name",
		Tags:        []string{"contacts"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, handle(h, h.search))

	huma.Register(api, huma.Operation{
		OperationID: "search-bookmarked-contacts",
		Method:      http.MethodGet,
		Path:        h.prefix + "/search/bookmarked",
		Summary:     "Filter contacts by bookmark",
		Tags:        []string{"contacts"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, handle(h, h.searchByBookmark))

	huma.Register(api, huma.Operation{
		OperationID: "get-contact",
		Method:      http.MethodGet,
		Path:        h.prefix + "/{id}",
		Summary:     "Get a contact",
		Tags:        []string{"contacts"},
		Errors:      []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, handle(h, h.get))

	huma.Register(api, huma.Operation{
		OperationID: "bookmark-contact",
		Method:      http.MethodPost,
		Path:        h.prefix + "/{id}/bookmark",
		Summary:     "Bookmark a contact",
		Tags:        []string{"contacts"},
		Errors:      []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, handle(h, h.bookmark))

	huma.Register(api, huma.Operation{
		OperationID: "update-contact",
		Method:      http.MethodPut,
		Path:        h.prefix + "/{id}",
		Summary:     "Update the supplied fields of a contact",
		Tags:        []string{"contacts"},
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, handle(h, h.update))

	huma.Register(api, huma.Operation{
		OperationID: "delete-contact",
		Method:      http.MethodDelete,
		Path:        h.prefix + "/{id}",
		Summary:     "Delete a contact",
		Tags:        []string{"contacts"},
		Errors:      []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, handle(h, h.delete))
}

func (h *contacts) list(ctx context.Context, _ *struct{}) (*ContactListOutput, error) {
	list, err := h.service.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ContactListOutput{Body: newContactModels(list)}, nil
}

func (h *contacts) add(ctx context.Context, input *struct {
	Body ContactCreateBody
}) (*ContactOutput, error) {
	contact, err := h.service.Add(ctx, core.ContactCreateData{
		Name:       input.Body.Name,
		Phone:      input.Body.Phone,
		Email:      input.Body.Email,
		Address:    input.Body.Address,
		Bookmarked: input.Body.Bookmarked,
	})
	if err != nil {
		return nil, err
	}
	return &ContactOutput{Body: newContactModel(contact)}, nil
}

func (h *contacts) get(ctx context.Context, input *ContactIDInput) (*ContactOutput, error) {
	contact, err := h.service.Get(ctx, core.ContactID(input.ID))
	if err != nil {
		return nil, err
	}
	return &ContactOutput{Body: newContactModel(contact)}, nil
}

func (h *contacts) search(ctx context.Context, input *struct {
	Name string `query:"name" doc:"Case-insensitive part of the name, empty matches everything"`
}) (*ContactListOutput, error) {
	list, err := h.service.Search(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	return &ContactListOutput{Body: newContactModels(list)}, nil
}

func (h *contacts) searchByBookmark(ctx context.Context, input *struct {
	Bookmarked string `query:"bookmarked" doc:"Empty or 0 returns every contact, any other value only bookmarked ones"`
}) (*ContactListOutput, error) {
	list, err := h.service.SearchByBookmark(ctx, directory.BookmarkFilter(input.Bookmarked))
	if err != nil {
		return nil, err
	}
	return &ContactListOutput{Body: newContactModels(list)}, nil
}

func (h *contacts) bookmark(ctx context.Context, input *ContactIDInput) (*BookmarkOutput, error) {
	contact, err := h.service.Bookmark(ctx, core.ContactID(input.ID))
	if err != nil {
		return nil, err
	}
	output := &BookmarkOutput{}
	output.Body.Message = "Contact bookmarked"
	output.Body.Contact = newContactModel(contact)
	return output, nil
}

func (h *contacts) update(ctx context.Context, input *struct {
	ID   uint `path:"id" minimum:"1" maximum:"2147483647" doc:"ID of the contact"`
	Body ContactUpdateBody
}) (*ContactOutput, error) {
	contact, err := h.service.Update(ctx, core.ContactID(input.ID), core.ContactUpdateData{
		Name:       input.Body.Name,
		Phone:      input.Body.Phone,
		Email:      input.Body.Email,
		Address:    input.Body.Address,
		Bookmarked: input.Body.Bookmarked,
	})
	if err != nil {
		return nil, err
	}
	return &ContactOutput{Body: newContactModel(contact)}, nil
}

func (h *contacts) delete(ctx context.Context, input *ContactIDInput) (*MessageOutput, error) {
	if err := h.service.Delete(ctx, core.ContactID(input.ID)); err != nil {
		return nil, err
	}
	output := &MessageOutput{}
	output.Body.Message = "Contact deleted"
	return output, nil
}
