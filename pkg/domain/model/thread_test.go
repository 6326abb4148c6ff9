package model_test

import (
	"errors"
	"testing"

	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestAddMessage(t *testing.T) {
	x := newTicket()

	updated, err := model.AddMessage(x, testActor, "  pipe replaced ", []string{"https://img/1.jpg", " "}, testNow)
	gt.NoError(t, err).Required()
	gt.Array(t, updated.Messages).Length(1).Required()
	gt.Value(t, updated.Messages[0].Text).Equal("pipe replaced")
	gt.Array(t, updated.Messages[0].Photos).Equal([]string{"https://img/1.jpg"})
	gt.Value(t, updated.Messages[0].SenderID).Equal(testActor.ID)
	gt.Array(t, updated.History).Length(0)
	gt.Array(t, x.Messages).Length(0)

	_, err = model.AddMessage(x, testActor, " ", nil, testNow)
	gt.Bool(t, errors.Is(err, model.ErrInvalidField)).True()
}

func TestSupplies(t *testing.T) {
	x := newTicket()

	updated, err := model.SetSupplies(x, testActor, []model.Supply{
		{Name: "Seal", Quantity: 2, Unit: "pcs"},
		{Name: "Silicone", Quantity: 0.5, Unit: "l"},
	}, testNow)
	gt.NoError(t, err).Required()
	gt.Array(t, updated.SuppliesNeeded).Length(2)

	ordered, err := model.MarkSupplyOrdered(updated, testActor, 1, testNow)
	gt.NoError(t, err).Required()
	gt.Value(t, ordered.SuppliesNeeded[1].Ordered).Equal(true)
	gt.Value(t, updated.SuppliesNeeded[1].Ordered).Equal(false)

	_, err = model.MarkSupplyOrdered(updated, testActor, 2, testNow)
	gt.Bool(t, errors.Is(err, model.ErrInvalidField)).True()

	_, err = model.SetSupplies(x, testActor, []model.Supply{{Name: "", Quantity: 1}}, testNow)
	gt.Bool(t, errors.Is(err, model.ErrInvalidField)).True()

	_, err = model.SetSupplies(x, testActor, []model.Supply{{Name: "Seal", Quantity: 0}}, testNow)
	gt.Bool(t, errors.Is(err, model.ErrInvalidField)).True()
}
