package sqlinline

const QInsertGeneration = `--sql 24ddd25b-82ca-4562-b452-1ec9348544a6
insert into generations(id, user_id, kind, model, document, created_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::jsonb, $6::timestamptz);
`

const QListGenerationsByUser = `--sql ff46f6a0-51f2-495d-9228-bd9774d7a0bd
select document
from generations
where user_id = $1::text
order by created_at desc
limit $2::int offset $3::int;
`
