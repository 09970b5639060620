package sqlinline

// QSelectCreditBalance always returns one row; users without a ledger entry
// have a zero balance.
const QSelectCreditBalance = `--sql 21ed7e7c-3a84-49e6-9cbb-95aef605f91c
select coalesce(
  (select balance from user_credits where user_id = $1::text),
  0
);
`

// QDeductCredits returns no row when the balance cannot cover the amount.
const QDeductCredits = `--sql 01dbb4ea-ae17-442b-873b-9d01b8307894
update user_credits
set balance = balance - $2::int,
    updated_at = now()
where user_id = $1::text
  and balance >= $2::int
returning balance;
`

const QGrantCredits = `--sql 71babb12-63a3-47ef-be81-0a1d81fda1de
insert into user_credits(user_id, balance, updated_at)
values ($1::text, greatest($2::int, 0), now())
on conflict (user_id) do update
set balance = greatest(user_credits.balance + $2::int, 0),
    updated_at = now()
returning balance;
`
