/*
Package ledger implements the wallet ledger core: the append-only
transaction log, the account balance store on top of it, and the
transfer engine that is the only write path for either.

A transfer debits the sender, credits the receiver, and appends exactly
one ledger entry, all inside a single storage transaction with both
account rows locked. Balances are therefore always recomputable from the
log, which Reconcile uses to detect drift.

Usage:

	repo := repositories.NewLedgerRepository(db)
	svc := ledger.NewService(repo, balanceCache, publisher, nil)

	entry, err := svc.Transfer(ctx, ledger.TransferRequest{
	    SenderID:    studentID,
	    ReceiverID:  vendorID,
	    Amount:      decimal.NewFromInt(30),
	    Kind:        models.EntryKindVendorPayment,
	    Description: "Lunch payment",
	})

Error handling:

Validation failures (ErrInvalidAmount, ErrAccountNotFound,
ErrRoleViolation, ErrInsufficientFunds) are permanent and surface
directly. Transient storage conflicts are retried a bounded number of
times with backoff before the engine returns ErrTimeout; a failed commit
never leaves balances and the log out of sync.
*/
package ledger
