/*
Package transfer implements the money-movement engine.

A transfer debits one account, credits another and writes a terminal
record, all inside one database transaction. The engine locks both
account rows before reading either, always in ascending id order, so
concurrent transfers over the same pair serialize instead of
deadlocking.

Outcomes:

  - Completed: both balance writes and the record committed together.
  - Failed (insufficient balance): no balance changed; the attempt is
    still recorded before ErrInsufficientBalance is returned.
  - Failed (engine error): the unit rolled back; a Failed record is
    written best effort and ErrTransferFailed is returned.

Requests rejected before locking (self-transfer, non-positive amount,
unknown account) leave no record. The engine performs no retries and no
idempotency deduplication; a resubmitted request is a new transfer.
*/
package transfer
